package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/models"
	"costtrak/internal/pagination"
	"costtrak/internal/services"
)

// CraftTypeHandler handles craft type reference data requests.
type CraftTypeHandler struct {
	craftTypeService services.CraftTypeServicer
	auditService     services.AuditServicer
}

// NewCraftTypeHandler creates a new CraftTypeHandler.
func NewCraftTypeHandler(craftTypeService services.CraftTypeServicer, auditService services.AuditServicer) *CraftTypeHandler {
	return &CraftTypeHandler{craftTypeService: craftTypeService, auditService: auditService}
}

// CreateCraftTypeRequest represents the request payload for creating a craft type.
type CreateCraftTypeRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Code     string `json:"code" binding:"required,min=1,max=20"`
	Category string `json:"category" binding:"required,craft_category"`
}

// UpdateCraftTypeRequest represents the request payload for updating a craft type.
type UpdateCraftTypeRequest struct {
	Name     string  `json:"name" binding:"omitempty,min=1,max=100"`
	Category *string `json:"category" binding:"omitempty,craft_category"`
}

// ListCraftTypesRequest represents the query parameters for listing craft types.
type ListCraftTypesRequest struct {
	pagination.PageRequest
	IncludeInactive bool `form:"include_inactive"`
}

// CreateCraftType handles the creation of a new craft type.
// @Summary     Create a craft type
// @Description Create a new craft type. Codes are normalized to uppercase.
// @Tags        craft-types
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCraftTypeRequest true "Craft type details"
// @Success     201 {object} models.CraftType "Craft type created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate craft code"
// @Router      /craft-types [post]
func (h *CraftTypeHandler) CreateCraftType(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCraftTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	craft, err := h.craftTypeService.CreateCraftType(req.Name, req.Code, models.CraftCategory(req.Category))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CRAFT_TYPE", "craft_type", craft.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "code": craft.Code})

	c.JSON(http.StatusCreated, gin.H{"craft_type": craft})
}

// GetCraftTypes handles the retrieval of craft types.
// @Summary     List craft types
// @Description Get a paginated list of craft types. Deactivated crafts are hidden unless include_inactive is set.
// @Tags        craft-types
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page             query int  false "Page number (default 1)"
// @Param       page_size        query int  false "Items per page (default 20, max 100)"
// @Param       include_inactive query bool false "Include deactivated craft types"
// @Success     200 {object} pagination.PageResponse[models.CraftType] "Paginated craft types"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /craft-types [get]
func (h *CraftTypeHandler) GetCraftTypes(c *gin.Context) {
	var req ListCraftTypesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.craftTypeService.GetCraftTypes(req.PageRequest, req.IncludeInactive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCraftTypeByID handles the retrieval of a specific craft type.
// @Summary     Get craft type by ID
// @Description Get a specific craft type by ID
// @Tags        craft-types
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Craft type ID"
// @Success     200 {object} models.CraftType "Craft type details"
// @Failure     404 {object} ErrorResponse "Craft type not found"
// @Router      /craft-types/{id} [get]
func (h *CraftTypeHandler) GetCraftTypeByID(c *gin.Context) {
	craftTypeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	craft, err := h.craftTypeService.GetCraftTypeByID(craftTypeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"craft_type": craft})
}

// UpdateCraftType handles updating a craft type.
// @Summary     Update craft type
// @Description Update a craft type's name or category. The code is immutable.
// @Tags        craft-types
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                    true "Craft type ID"
// @Param       request body UpdateCraftTypeRequest true "Updated craft type details"
// @Success     200 {object} models.CraftType "Updated craft type"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Craft type not found"
// @Router      /craft-types/{id} [put]
func (h *CraftTypeHandler) UpdateCraftType(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	craftTypeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCraftTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var category *models.CraftCategory
	if req.Category != nil {
		cat := models.CraftCategory(*req.Category)
		category = &cat
	}

	craft, err := h.craftTypeService.UpdateCraftType(craftTypeID, req.Name, category)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_CRAFT_TYPE", "craft_type", craftTypeID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"craft_type": craft})
}

// DeactivateCraftType handles deactivating a craft type.
// @Summary     Deactivate craft type
// @Description Deactivate a craft type. Historical actuals keep referring to it; it stops appearing in forecasts and pickers.
// @Tags        craft-types
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Craft type ID"
// @Success     200 {object} map[string]string "Deactivation confirmation"
// @Failure     404 {object} ErrorResponse "Craft type not found"
// @Router      /craft-types/{id} [delete]
func (h *CraftTypeHandler) DeactivateCraftType(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	craftTypeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.craftTypeService.DeactivateCraftType(craftTypeID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DEACTIVATE_CRAFT_TYPE", "craft_type", craftTypeID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Craft type deactivated successfully"})
}
