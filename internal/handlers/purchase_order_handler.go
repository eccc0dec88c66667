package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/models"
	"costtrak/internal/pagination"
	"costtrak/internal/services"
	"costtrak/internal/week"
)

// PurchaseOrderHandler handles purchase order requests.
type PurchaseOrderHandler struct {
	poService    services.PurchaseOrderServicer
	auditService services.AuditServicer
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler.
func NewPurchaseOrderHandler(poService services.PurchaseOrderServicer, auditService services.AuditServicer) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{poService: poService, auditService: auditService}
}

// CreatePurchaseOrderRequest represents the request payload for creating a purchase order.
type CreatePurchaseOrderRequest struct {
	PONumber        string  `json:"po_number" binding:"required,min=1,max=50"`
	Vendor          string  `json:"vendor" binding:"required,min=1,max=200"`
	Description     string  `json:"description" binding:"max=1000"`
	CostCategory    string  `json:"cost_category" binding:"required,cost_category"`
	CommittedAmount float64 `json:"committed_amount" binding:"gte=0"`
	IssueDate       *string `json:"issue_date" binding:"omitempty,date_string"`
}

// UpdatePurchaseOrderRequest represents the request payload for updating a purchase order.
type UpdatePurchaseOrderRequest struct {
	Vendor          string   `json:"vendor" binding:"omitempty,min=1,max=200"`
	Description     string   `json:"description" binding:"omitempty,max=1000"`
	CommittedAmount *float64 `json:"committed_amount" binding:"omitempty,gte=0"`
	InvoicedAmount  *float64 `json:"invoiced_amount" binding:"omitempty,gte=0"`
	Status          *string  `json:"status" binding:"omitempty,po_status"`
}

// ListPurchaseOrdersRequest represents the query parameters for listing purchase orders.
type ListPurchaseOrdersRequest struct {
	pagination.PageRequest
	Status *string `form:"status" binding:"omitempty,po_status"`
}

// CreatePurchaseOrder handles the creation of a new purchase order.
// @Summary     Create a purchase order
// @Description Create a new purchase order in draft status
// @Tags        purchase-orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                        true "Project ID"
// @Param       request body CreatePurchaseOrderRequest true "Purchase order details"
// @Success     201 {object} models.PurchaseOrder "Purchase order created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate PO number"
// @Router      /projects/{id}/purchase-orders [post]
func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *gin.Context) {
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

	var req CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var issueDate *time.Time
	if req.IssueDate != nil && *req.IssueDate != "" {
		parsed, parseErr := week.ParseDate(*req.IssueDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid issue_date format"))
			return
		}
		issueDate = &parsed
	}

	po, err := h.poService.CreatePurchaseOrder(
		projectID,
		req.PONumber,
		req.Vendor,
		req.Description,
		models.CostCategory(req.CostCategory),
		req.CommittedAmount,
		issueDate,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_PURCHASE_ORDER", "purchase_order", po.ID, c.ClientIP(),
		map[string]interface{}{"po_number": req.PONumber, "committed_amount": req.CommittedAmount})

	c.JSON(http.StatusCreated, gin.H{"purchase_order": po})
}

// GetProjectPurchaseOrders handles the retrieval of a project's purchase orders.
// @Summary     List purchase orders
// @Description Get a paginated list of a project's purchase orders with an optional status filter
// @Tags        purchase-orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  int    true  "Project ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       status    query string false "Filter by status (draft, approved, closed, cancelled)"
// @Success     200 {object} pagination.PageResponse[models.PurchaseOrder] "Paginated purchase orders"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Router      /projects/{id}/purchase-orders [get]
func (h *PurchaseOrderHandler) GetProjectPurchaseOrders(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ListPurchaseOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.POStatus
	if req.Status != nil {
		s := models.POStatus(*req.Status)
		status = &s
	}

	result, err := h.poService.GetProjectPurchaseOrders(projectID, req.PageRequest, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPurchaseOrderByID handles the retrieval of a specific purchase order.
// @Summary     Get purchase order by ID
// @Description Get a specific purchase order by ID
// @Tags        purchase-orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Purchase order ID"
// @Success     200 {object} models.PurchaseOrder "Purchase order details"
// @Failure     404 {object} ErrorResponse "Purchase order not found"
// @Router      /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetPurchaseOrderByID(c *gin.Context) {
	poID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	po, err := h.poService.GetPurchaseOrderByID(poID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchase_order": po})
}

// UpdatePurchaseOrder handles updating a purchase order.
// @Summary     Update purchase order
// @Description Update a purchase order. Closed purchase orders are immutable.
// @Tags        purchase-orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                        true "Purchase order ID"
// @Param       request body UpdatePurchaseOrderRequest true "Updated purchase order details"
// @Success     200 {object} models.PurchaseOrder "Updated purchase order"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Purchase order not found"
// @Failure     409 {object} ErrorResponse "Purchase order is closed"
// @Router      /purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) UpdatePurchaseOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	poID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.POStatus
	if req.Status != nil {
		s := models.POStatus(*req.Status)
		status = &s
	}

	po, err := h.poService.UpdatePurchaseOrder(poID, req.Vendor, req.Description, req.CommittedAmount, req.InvoicedAmount, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_PURCHASE_ORDER", "purchase_order", poID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"purchase_order": po})
}

// DeletePurchaseOrder handles deleting a purchase order.
// @Summary     Delete purchase order
// @Description Soft-delete a purchase order. Closed purchase orders cannot be deleted.
// @Tags        purchase-orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Purchase order ID"
// @Success     200 {object} map[string]string "Deletion confirmation"
// @Failure     404 {object} ErrorResponse "Purchase order not found"
// @Failure     409 {object} ErrorResponse "Purchase order is closed"
// @Router      /purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) DeletePurchaseOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	poID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.poService.DeletePurchaseOrder(poID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_PURCHASE_ORDER", "purchase_order", poID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Purchase order deleted successfully"})
}
