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

// ChangeOrderHandler handles change order requests.
type ChangeOrderHandler struct {
	coService    services.ChangeOrderServicer
	auditService services.AuditServicer
}

// NewChangeOrderHandler creates a new ChangeOrderHandler.
func NewChangeOrderHandler(coService services.ChangeOrderServicer, auditService services.AuditServicer) *ChangeOrderHandler {
	return &ChangeOrderHandler{coService: coService, auditService: auditService}
}

// CreateChangeOrderRequest represents the request payload for creating a change order.
// Amount may be negative for deductive change orders.
type CreateChangeOrderRequest struct {
	CONumber      string  `json:"co_number" binding:"required,min=1,max=50"`
	Description   string  `json:"description" binding:"required,max=1000"`
	Amount        float64 `json:"amount" binding:"required"`
	SubmittedDate *string `json:"submitted_date" binding:"omitempty,date_string"`
}

// UpdateChangeOrderRequest represents the request payload for updating a pending change order.
type UpdateChangeOrderRequest struct {
	Description string   `json:"description" binding:"omitempty,max=1000"`
	Amount      *float64 `json:"amount"`
}

// ListChangeOrdersRequest represents the query parameters for listing change orders.
type ListChangeOrdersRequest struct {
	pagination.PageRequest
	Status *string `form:"status" binding:"omitempty,co_status"`
}

// CreateChangeOrder handles the creation of a new change order.
// @Summary     Create a change order
// @Description Create a new change order in pending status
// @Tags        change-orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                      true "Project ID"
// @Param       request body CreateChangeOrderRequest true "Change order details"
// @Success     201 {object} models.ChangeOrder "Change order created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Router      /projects/{id}/change-orders [post]
func (h *ChangeOrderHandler) CreateChangeOrder(c *gin.Context) {
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

	var req CreateChangeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	submittedDate := time.Now().UTC()
	if req.SubmittedDate != nil && *req.SubmittedDate != "" {
		parsed, parseErr := week.ParseDate(*req.SubmittedDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid submitted_date format"))
			return
		}
		submittedDate = parsed
	}

	co, err := h.coService.CreateChangeOrder(projectID, req.CONumber, req.Description, req.Amount, submittedDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CHANGE_ORDER", "change_order", co.ID, c.ClientIP(),
		map[string]interface{}{"co_number": req.CONumber, "amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"change_order": co})
}

// GetProjectChangeOrders handles the retrieval of a project's change orders.
// @Summary     List change orders
// @Description Get a paginated list of a project's change orders with an optional status filter
// @Tags        change-orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  int    true  "Project ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       status    query string false "Filter by status (pending, approved, rejected)"
// @Success     200 {object} pagination.PageResponse[models.ChangeOrder] "Paginated change orders"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Router      /projects/{id}/change-orders [get]
func (h *ChangeOrderHandler) GetProjectChangeOrders(c *gin.Context) {
	projectID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ListChangeOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.COStatus
	if req.Status != nil {
		s := models.COStatus(*req.Status)
		status = &s
	}

	result, err := h.coService.GetProjectChangeOrders(projectID, req.PageRequest, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetChangeOrderByID handles the retrieval of a specific change order.
// @Summary     Get change order by ID
// @Description Get a specific change order by ID
// @Tags        change-orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Change order ID"
// @Success     200 {object} models.ChangeOrder "Change order details"
// @Failure     404 {object} ErrorResponse "Change order not found"
// @Router      /change-orders/{id} [get]
func (h *ChangeOrderHandler) GetChangeOrderByID(c *gin.Context) {
	coID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	co, err := h.coService.GetChangeOrderByID(coID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"change_order": co})
}

// UpdateChangeOrder handles updating a pending change order.
// @Summary     Update change order
// @Description Update a change order's description or amount. Only pending change orders can be edited.
// @Tags        change-orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                      true "Change order ID"
// @Param       request body UpdateChangeOrderRequest true "Updated change order details"
// @Success     200 {object} models.ChangeOrder "Updated change order"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Change order not found"
// @Failure     409 {object} ErrorResponse "Change order already resolved"
// @Router      /change-orders/{id} [put]
func (h *ChangeOrderHandler) UpdateChangeOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	coID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateChangeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	co, err := h.coService.UpdateChangeOrder(coID, req.Description, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_CHANGE_ORDER", "change_order", coID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"change_order": co})
}

// ApproveChangeOrder handles approving a pending change order. Approval
// folds the amount into the project's revised contract and notifies
// project managers.
// @Summary     Approve change order
// @Description Approve a pending change order, adjusting the project's revised contract by its amount
// @Tags        change-orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Change order ID"
// @Success     200 {object} models.ChangeOrder "Approved change order"
// @Failure     403 {object} ErrorResponse "Insufficient role"
// @Failure     404 {object} ErrorResponse "Change order not found"
// @Failure     409 {object} ErrorResponse "Change order already resolved"
// @Router      /change-orders/{id}/approve [post]
func (h *ChangeOrderHandler) ApproveChangeOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	coID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	co, err := h.coService.ApproveChangeOrder(coID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "APPROVE_CHANGE_ORDER", "change_order", coID, c.ClientIP(),
		map[string]interface{}{"amount": co.Amount})

	c.JSON(http.StatusOK, gin.H{"change_order": co})
}

// RejectChangeOrder handles rejecting a pending change order.
// @Summary     Reject change order
// @Description Reject a pending change order. The project's contract is left untouched.
// @Tags        change-orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Change order ID"
// @Success     200 {object} models.ChangeOrder "Rejected change order"
// @Failure     403 {object} ErrorResponse "Insufficient role"
// @Failure     404 {object} ErrorResponse "Change order not found"
// @Failure     409 {object} ErrorResponse "Change order already resolved"
// @Router      /change-orders/{id}/reject [post]
func (h *ChangeOrderHandler) RejectChangeOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	coID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	co, err := h.coService.RejectChangeOrder(coID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REJECT_CHANGE_ORDER", "change_order", coID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"change_order": co})
}
