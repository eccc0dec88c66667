package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/models"
	"costtrak/internal/services"
)

// BudgetHandler handles budget line item and reporting requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetLineItemRequest represents the request payload for creating a budget line item.
type CreateBudgetLineItemRequest struct {
	CostCategory string  `json:"cost_category" binding:"required,cost_category"`
	Description  string  `json:"description" binding:"required,max=500"`
	Amount       float64 `json:"amount" binding:"gte=0"`
}

// UpdateBudgetLineItemRequest represents the request payload for updating a budget line item.
type UpdateBudgetLineItemRequest struct {
	Description string   `json:"description" binding:"omitempty,max=500"`
	Amount      *float64 `json:"amount" binding:"omitempty,gte=0"`
}

// CreateLineItem handles the creation of a new budget line item.
// @Summary     Create a budget line item
// @Description Add a budget line item to a project's cost category
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                         true "Project ID"
// @Param       request body CreateBudgetLineItemRequest true "Line item details"
// @Success     201 {object} models.BudgetLineItem "Line item created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Router      /projects/{id}/budget [post]
func (h *BudgetHandler) CreateLineItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.budgetService.CreateLineItem(projectID, models.CostCategory(req.CostCategory), req.Description, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET_ITEM", "budget_line_item", item.ID, c.ClientIP(),
		map[string]interface{}{"cost_category": req.CostCategory, "amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"budget_line_item": item})
}

// GetLineItems handles the retrieval of a project's budget line items.
// @Summary     List budget line items
// @Description Get all budget line items for a project
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Project ID"
// @Success     200 {array} models.BudgetLineItem "Budget line items"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Router      /projects/{id}/budget [get]
func (h *BudgetHandler) GetLineItems(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	items, err := h.budgetService.GetLineItems(projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget_line_items": items})
}

// UpdateLineItem handles updating a budget line item.
// @Summary     Update budget line item
// @Description Update a budget line item's description or amount
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                         true "Line item ID"
// @Param       request body UpdateBudgetLineItemRequest true "Updated line item details"
// @Success     200 {object} models.BudgetLineItem "Updated line item"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Line item not found"
// @Router      /budget-items/{id} [put]
func (h *BudgetHandler) UpdateLineItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.budgetService.UpdateLineItem(itemID, req.Description, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BUDGET_ITEM", "budget_line_item", itemID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"budget_line_item": item})
}

// DeleteLineItem handles deleting a budget line item.
// @Summary     Delete budget line item
// @Description Soft-delete a budget line item
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Line item ID"
// @Success     200 {object} map[string]string "Deletion confirmation"
// @Failure     404 {object} ErrorResponse "Line item not found"
// @Router      /budget-items/{id} [delete]
func (h *BudgetHandler) DeleteLineItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteLineItem(itemID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET_ITEM", "budget_line_item", itemID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Budget line item deleted successfully"})
}

// GetBudgetVsActual handles the retrieval of a project's budget report.
// @Summary     Budget vs actual report
// @Description Per-category budget, committed, and actual spend for a project. Committed comes from approved and closed purchase orders; actuals from invoiced amounts plus recorded labor cost.
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Project ID"
// @Success     200 {object} services.BudgetVsActualReport "Budget vs actual report"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     503 {object} ErrorResponse "Underlying data unavailable"
// @Router      /projects/{id}/budget-vs-actual [get]
func (h *BudgetHandler) GetBudgetVsActual(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.budgetService.GetBudgetVsActual(projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
