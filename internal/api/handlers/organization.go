package handlers

import (
	"net/http"

	"marketplace-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// OrganizationHandler handles HTTP requests for organizations
type OrganizationHandler struct {
	service service.OrganizationServiceInterface
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(service service.OrganizationServiceInterface) *OrganizationHandler {
	return &OrganizationHandler{service: service}
}

// CreateOrganization handles POST /api/v1/organizations
// @Summary Create a new organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body service.CreateOrganizationRequest true "Organization data"
// @Success 201 {object} service.OrganizationResponse "Successfully created organization"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 409 {object} map[string]interface{} "Organization already exists"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /v1/organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	var req service.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	org, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "create organization")
		return
	}

	c.JSON(http.StatusCreated, org)
}

// GetOrganization handles GET /api/v1/organizations/:id
// @Summary Get organization by ID
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID (UUID)"
// @Success 200 {object} service.OrganizationResponse "Successfully retrieved organization"
// @Failure 400 {object} map[string]interface{} "Invalid organization ID"
// @Failure 404 {object} map[string]interface{} "Organization not found"
// @Router /v1/organizations/{id} [get]
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	id, ok := pathID(c, "id", "organization")
	if !ok {
		return
	}

	org, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "get organization")
		return
	}

	c.JSON(http.StatusOK, org)
}

// UpdateOrganization handles PUT /api/v1/organizations/:id
// @Summary Update an organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID (UUID)"
// @Param organization body service.UpdateOrganizationRequest true "Organization data"
// @Success 200 {object} service.OrganizationResponse "Updated organization"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Organization not found"
// @Failure 409 {object} map[string]interface{} "Name already taken"
// @Security BearerAuth
// @Router /v1/organizations/{id} [put]
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	id, ok := pathID(c, "id", "organization")
	if !ok {
		return
	}

	var req service.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	org, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "update organization")
		return
	}

	c.JSON(http.StatusOK, org)
}

// ListOrganizations handles GET /api/v1/organizations
// @Summary List organizations
// @Tags organizations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} service.OrganizationListResponse "Organizations"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /v1/organizations [get]
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	page, pageSize := pageParams(c)

	orgs, err := h.service.GetAll(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err, "list organizations")
		return
	}

	c.JSON(http.StatusOK, orgs)
}
