package withdrawals

import (
	"strings"

	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
)

// Details is the method-specific payout destination of a withdrawal.
type Details interface {
	Method() enums.WithdrawalMethod
	apply(row *models.WithdrawalRequest)
}

// SBP pays through the fast payment system by phone number.
type SBP struct {
	Phone         string `json:"phone"`
	CardNumber    string `json:"card_number"`
	RecipientName string `json:"recipient_name"`
}

// Card pays to a bank card.
type Card struct {
	CardNumber    string `json:"card_number"`
	RecipientName string `json:"recipient_name"`
	BankName      string `json:"bank_name"`
}

// Salary adds the amount to the next salary transfer.
type Salary struct {
	CardNumber string `json:"card_number"`
}

func (SBP) Method() enums.WithdrawalMethod    { return enums.WithdrawalMethodSBP }
func (Card) Method() enums.WithdrawalMethod   { return enums.WithdrawalMethodCard }
func (Salary) Method() enums.WithdrawalMethod { return enums.WithdrawalMethodSalary }

func (d SBP) apply(row *models.WithdrawalRequest) {
	row.Method = d.Method()
	row.Phone = &d.Phone
	row.CardNumber = d.CardNumber
	row.RecipientName = &d.RecipientName
}

func (d Card) apply(row *models.WithdrawalRequest) {
	row.Method = d.Method()
	row.CardNumber = d.CardNumber
	row.RecipientName = &d.RecipientName
	row.BankName = &d.BankName
}

func (d Salary) apply(row *models.WithdrawalRequest) {
	row.Method = d.Method()
	row.CardNumber = d.CardNumber
}

// RawDetails is the flat payload accepted from clients before it is narrowed
// to a method variant.
type RawDetails struct {
	Phone         string `json:"phone"`
	CardNumber    string `json:"card_number"`
	RecipientName string `json:"recipient_name"`
	BankName      string `json:"bank_name"`
}

// NewDetails validates raw for method and returns the matching variant.
// Fields that the method does not use are ignored.
func NewDetails(method enums.WithdrawalMethod, raw RawDetails) (Details, error) {
	if !method.IsValid() {
		return nil, unsupportedMethod()
	}
	card, err := cardNumber(raw.CardNumber)
	if err != nil {
		return nil, err
	}
	switch method {
	case enums.WithdrawalMethodSBP:
		phone, err := phoneNumber(raw.Phone)
		if err != nil {
			return nil, err
		}
		name, err := required("recipient_name", raw.RecipientName)
		if err != nil {
			return nil, err
		}
		return SBP{Phone: phone, CardNumber: card, RecipientName: name}, nil
	case enums.WithdrawalMethodCard:
		name, err := required("recipient_name", raw.RecipientName)
		if err != nil {
			return nil, err
		}
		bank, err := required("bank_name", raw.BankName)
		if err != nil {
			return nil, err
		}
		return Card{CardNumber: card, RecipientName: name, BankName: bank}, nil
	case enums.WithdrawalMethodSalary:
		return Salary{CardNumber: card}, nil
	default:
		return nil, unsupportedMethod()
	}
}

// DetailsFromModel rebuilds the variant stored on a row.
func DetailsFromModel(row *models.WithdrawalRequest) Details {
	switch row.Method {
	case enums.WithdrawalMethodSBP:
		return SBP{Phone: deref(row.Phone), CardNumber: row.CardNumber, RecipientName: deref(row.RecipientName)}
	case enums.WithdrawalMethodCard:
		return Card{CardNumber: row.CardNumber, RecipientName: deref(row.RecipientName), BankName: deref(row.BankName)}
	default:
		return Salary{CardNumber: row.CardNumber}
	}
}

func unsupportedMethod() error {
	return fieldError("method", "unsupported withdrawal method")
}

func phoneNumber(raw string) (string, error) {
	digits, ok := digitsOnly(raw, "+()- ")
	if !ok || len(digits) < 10 || len(digits) > 15 {
		return "", fieldError("phone", "phone must contain 10 to 15 digits")
	}
	return digits, nil
}

func cardNumber(raw string) (string, error) {
	digits, ok := digitsOnly(raw, "- ")
	if !ok || len(digits) < 16 || len(digits) > 19 {
		return "", fieldError("card_number", "card number must contain 16 to 19 digits")
	}
	return digits, nil
}

// digitsOnly strips separators and reports false on any other non-digit.
func digitsOnly(raw, separators string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case strings.ContainsRune(separators, r):
		default:
			return "", false
		}
	}
	return b.String(), true
}

func required(field, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", fieldError(field, field+" is required")
	}
	return v, nil
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
