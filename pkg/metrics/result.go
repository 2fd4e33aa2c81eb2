package metrics

import pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"

// ResultFor maps an operation error onto a metric result label.
func ResultFor(err error) string {
	if err == nil {
		return ResultOK
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return ResultError
	}
	switch typed.Code() {
	case pkgerrors.CodeConcurrencyConflict:
		return ResultConflict
	case pkgerrors.CodeInternal, pkgerrors.CodeDependency:
		return ResultError
	default:
		return ResultRejected
	}
}
