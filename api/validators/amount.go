package validators

import (
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/angelmondragon/hourstay-backend/pkg/money"
)

// ResolveAmount accepts an amount either in kopecks or as a ruble decimal
// string. Exactly one form must be present when required is set.
func ResolveAmount(kopecks *int64, rubles *string, required bool) (*int64, error) {
	switch {
	case kopecks != nil && rubles != nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "send either amount or amount_rub").
			WithDetails(map[string]any{"field": "amount"})
	case kopecks != nil:
		return kopecks, nil
	case rubles != nil:
		value, err := money.FromRubles(*rubles)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount_rub").
				WithDetails(map[string]any{"field": "amount_rub"})
		}
		return &value, nil
	case required:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount is required").
			WithDetails(map[string]any{"field": "amount"})
	default:
		return nil, nil
	}
}
