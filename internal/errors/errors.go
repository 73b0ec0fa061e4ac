package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError represents an error when an entity is not found.
// Rows outside the caller's tenant scope are reported the same way.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Entity  string
	Context string // Additional context like "with this name"
}

func (e *AlreadyExistsError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s already exists %s", e.Entity, e.Context)
	}
	return fmt.Sprintf("%s already exists", e.Entity)
}

// Is enables errors.Is() comparison for AlreadyExistsError
func (e *AlreadyExistsError) Is(target error) bool {
	t, ok := target.(*AlreadyExistsError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// ConflictError reports a request that collides with one already running
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ValidationError represents invalid input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// AuthenticationError represents authentication-related errors
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// AuthorizationError represents a forbidden operation
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// ConfigurationError represents configuration-related errors
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// InsufficientStockError is returned when a cart line asks for more units than are in stock
type InsufficientStockError struct {
	ProductID uuid.UUID
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	label := e.Name
	if label == "" {
		label = e.ProductID.String()
	}
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", label, e.Requested, e.Available)
}

// UpstreamUnavailableError wraps a failure of an external dependency
type UpstreamUnavailableError struct {
	Service string
	Err     error
}

func (e *UpstreamUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s unavailable", e.Service)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

// Entity Not Found Errors
var (
	ErrOrganizationNotFound = &NotFoundError{Entity: "organization"}
	ErrUserNotFound         = &NotFoundError{Entity: "user"}
	ErrProductNotFound      = &NotFoundError{Entity: "product"}
	ErrOrderNotFound        = &NotFoundError{Entity: "order"}
)

// Already Exists Errors
var (
	ErrOrganizationExists = &AlreadyExistsError{Entity: "organization", Context: "with this name"}
	ErrUserExists         = &AlreadyExistsError{Entity: "user", Context: "with this username"}
)

// Business Logic Errors
var (
	ErrCheckoutInProgress = &ConflictError{Message: "a checkout for this cart is already in progress"}
	ErrEmptyCart          = &ValidationError{Field: "cart", Message: "cart is empty"}
	ErrEmptySearchQuery   = &ValidationError{Field: "q", Message: "search query is required"}
	ErrInvalidQuantity    = &ValidationError{Field: "quantity", Message: "quantity must be greater than zero"}
	ErrInvalidPriceRange  = &ValidationError{Field: "minPrice", Message: "minPrice must not exceed maxPrice"}
)

// Authentication Errors
var (
	ErrInvalidCredentials = &AuthenticationError{Message: "invalid username or password"}
	ErrInvalidToken       = &AuthenticationError{Message: "invalid token"}
	ErrNotAuthenticated   = &AuthenticationError{Message: "authentication required"}
)

// Authorization Errors
var (
	ErrForbidden                = &AuthorizationError{Message: "operation not permitted for this role"}
	ErrCrossTenantWrite         = &AuthorizationError{Message: "cannot modify data of another organization"}
	ErrMarketplaceProductLocked = &AuthorizationError{Message: "marketplace-wide products can only be changed by an administrator"}
	ErrOutsideScope             = &AuthorizationError{Message: "row is outside the active tenant scope"}
)

// Configuration Errors
var (
	ErrTranslatorNotConfigured = &ConfigurationError{Message: "GEMINI_API_KEY is not set"}
)

// Helper Functions

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsAlreadyExists checks if an error is an AlreadyExistsError
func IsAlreadyExists(err error) bool {
	var existsErr *AlreadyExistsError
	return errors.As(err, &existsErr)
}

// IsConflict checks if an error is a ConflictError
func IsConflict(err error) bool {
	var conflictErr *ConflictError
	return errors.As(err, &conflictErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsAuthentication checks if an error is an AuthenticationError
func IsAuthentication(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsAuthorization checks if an error is an AuthorizationError
func IsAuthorization(err error) bool {
	var authzErr *AuthorizationError
	return errors.As(err, &authzErr)
}

// IsConfiguration checks if an error is a ConfigurationError
func IsConfiguration(err error) bool {
	var configErr *ConfigurationError
	return errors.As(err, &configErr)
}

// IsInsufficientStock checks if an error is an InsufficientStockError
func IsInsufficientStock(err error) bool {
	var stockErr *InsufficientStockError
	return errors.As(err, &stockErr)
}

// IsUpstreamUnavailable checks if an error is an UpstreamUnavailableError
func IsUpstreamUnavailable(err error) bool {
	var upstreamErr *UpstreamUnavailableError
	return errors.As(err, &upstreamErr)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(message string) error {
	return &ConfigurationError{Message: message}
}

// NewInsufficientStockError creates a new InsufficientStockError
func NewInsufficientStockError(productID uuid.UUID, name string, requested, available int) error {
	return &InsufficientStockError{ProductID: productID, Name: name, Requested: requested, Available: available}
}

// NewUpstreamUnavailableError wraps err as an UpstreamUnavailableError for service
func NewUpstreamUnavailableError(service string, err error) error {
	return &UpstreamUnavailableError{Service: service, Err: err}
}
