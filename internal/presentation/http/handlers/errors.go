package handlers

import (
	"errors"

	"github.com/formweave/formweave-go/internal/domain/entities/forms"
)

// asInvalidCondition reports whether err wraps an InvalidConditionError
func asInvalidCondition(err error, target **forms.InvalidConditionError) bool {
	return errors.As(err, target)
}
