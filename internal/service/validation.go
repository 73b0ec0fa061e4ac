package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	apperrors "marketplace-backend/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// NewValidator returns a validator that reports fields by their JSON name
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validationError reports the first failed rule as a ValidationError
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewValidationError(fe.Field(), fmt.Sprintf("failed on the '%s' rule", fe.Tag()))
	}
	return apperrors.NewValidationError("", err.Error())
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return apperrors.NewValidationError("price", "price must not be negative")
	}
	if !price.Equal(price.Round(2)) {
		return apperrors.NewValidationError("price", "price must have at most two decimal places")
	}
	return nil
}

// paginate clamps page and pageSize and returns the matching limit and offset
func paginate(page, pageSize int) (int, int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize, page, pageSize
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
