package handlers

import (
	"net/http"

	"marketplace-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler handles HTTP requests for user accounts
type UserHandler struct {
	service service.UserServiceInterface
}

// NewUserHandler creates a new user handler
func NewUserHandler(service service.UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// Register handles POST /api/auth/register
// @Summary Register a member account
// @Description Self-service sign-up as a MEMBER of an existing organization
// @Tags auth
// @Accept json
// @Produce json
// @Param user body service.RegisterRequest true "Account data"
// @Success 201 {object} service.UserResponse "Created account"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Organization not found"
// @Failure 409 {object} map[string]interface{} "Username taken"
// @Router /auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "register user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// CreateUser handles POST /api/v1/users
// @Summary Create a user
// @Description Admins create users of any role. MANAGER and MEMBER need an organization; ADMIN must not have one.
// @Tags users
// @Accept json
// @Produce json
// @Param user body service.CreateUserRequest true "User data"
// @Success 201 {object} service.UserResponse "Created user"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 403 {object} map[string]interface{} "Forbidden"
// @Failure 409 {object} map[string]interface{} "Username taken"
// @Security BearerAuth
// @Router /v1/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "create user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ListUsers handles GET /api/v1/users
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} service.UserListResponse "Users"
// @Security BearerAuth
// @Router /v1/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, pageSize := pageParams(c)

	users, err := h.service.List(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err, "list users")
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /api/v1/users/:id
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID (UUID)"
// @Success 200 {object} service.UserResponse "User"
// @Failure 400 {object} map[string]interface{} "Invalid user ID"
// @Failure 404 {object} map[string]interface{} "User not found"
// @Security BearerAuth
// @Router /v1/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/users/:id
// @Summary Delete a user
// @Tags users
// @Param id path string true "User ID (UUID)"
// @Success 204 "User deleted"
// @Failure 400 {object} map[string]interface{} "Invalid user ID or user still referenced"
// @Failure 404 {object} map[string]interface{} "User not found"
// @Security BearerAuth
// @Router /v1/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete user")
		return
	}

	c.Status(http.StatusNoContent)
}
