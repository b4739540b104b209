package payment

import (
	"github.com/duetap/duetap-backend-go/internal/pkg/validator"
)

// MarkAsPaidRequest is a manual mark-as-paid from the client dashboard, used
// when a customer pays outside a hosted link (cash, bank transfer).
type MarkAsPaidRequest struct {
	PaidDate         string `json:"paid_date,omitempty"`
	GatewayPaymentID string `json:"gateway_payment_id,omitempty"`
}

func (r *MarkAsPaidRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PaidDate != "" {
		if _, ok := validator.IsValidDate(r.PaidDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "paid_date", Message: "paid_date must be a valid date (YYYY-MM-DD or RFC 3339)"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
