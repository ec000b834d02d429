package entrydelivery

import (
	"github.com/go-playground/validator/v10"

	"github.com/corebank/ledger/internal/domain"
)

// ValidMethod checks that the bound field is a supported transaction method.
var ValidMethod validator.Func = func(fieldLevel validator.FieldLevel) bool {
	if method, ok := fieldLevel.Field().Interface().(string); ok {
		return domain.Method(method).Valid()
	}

	return false
}
