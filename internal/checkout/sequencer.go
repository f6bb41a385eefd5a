package checkout

import (
	"strings"

	"github.com/CodeX93/freshbox-backend/internal/cart"
	"github.com/CodeX93/freshbox-backend/internal/coverage"
	"github.com/CodeX93/freshbox-backend/pkg/enums"
	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
)

// Sequencer owns the checkout step order and per-step validation. Advancing
// runs the validator for the current step; retreating never validates so a
// user can go back with invalid data still in place.
type Sequencer struct {
	matcher *coverage.Matcher
}

// NewSequencer wires the sequencer with its coverage matcher.
func NewSequencer(matcher *coverage.Matcher) *Sequencer {
	return &Sequencer{matcher: matcher}
}

// Advance validates the active step against the draft and, on success,
// moves the state to the next step. Complete is terminal.
func (s *Sequencer) Advance(state *SessionState) error {
	if state.ActiveStep == enums.StepComplete {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is already complete")
	}
	if err := s.Validate(state.ActiveStep, &state.Draft); err != nil {
		return err
	}

	steps := enums.OrderedCheckoutSteps()
	idx := state.ActiveStep.Index()
	if idx < 0 || idx+1 >= len(steps) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no further step to advance to")
	}
	state.ActiveStep = steps[idx+1]
	return nil
}

// Retreat moves the state one step back without validation. It fails from
// the first step and from Complete.
func (s *Sequencer) Retreat(state *SessionState) error {
	if state.ActiveStep == enums.StepComplete {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot retreat from a completed checkout")
	}
	idx := state.ActiveStep.Index()
	if idx <= 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "already at the first step")
	}
	state.ActiveStep = enums.OrderedCheckoutSteps()[idx-1]
	return nil
}

// Validate runs the validator bound to the given step.
func (s *Sequencer) Validate(step enums.CheckoutStep, draft *OrderDraft) error {
	switch step {
	case enums.StepAddress:
		return s.validateAddress(draft.Address)
	case enums.StepServices:
		return cart.ValidateLines(draft.Lines)
	case enums.StepSchedule:
		return draft.Schedule.Validate()
	case enums.StepContact:
		return validateContact(draft.Contact)
	case enums.StepPayment:
		return validatePayment(draft.Payment)
	case enums.StepComplete:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "unknown checkout step")
	}
}

func (s *Sequencer) validateAddress(addr AddressRecord) error {
	if strings.TrimSpace(addr.Postcode) == "" || strings.TrimSpace(addr.AddressLine1) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "postcode and address line 1 are required")
	}
	if !addr.AddressType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "address type must be home or office")
	}
	if !s.matcher.IsCovered(addr.Postcode) {
		return pkgerrors.New(pkgerrors.CodeCoverage, "postcode is outside the coverage area").
			WithDetails(map[string]any{"postcode": strings.TrimSpace(addr.Postcode)})
	}
	return nil
}

func validateContact(contact ContactRecord) error {
	if strings.TrimSpace(contact.FirstName) == "" ||
		strings.TrimSpace(contact.LastName) == "" ||
		strings.TrimSpace(contact.Email) == "" ||
		strings.TrimSpace(contact.Phone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "first name, last name, email and phone are required")
	}
	if contact.CreateAccount && contact.Password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "password is required when creating an account")
	}
	return nil
}

func validatePayment(payment PaymentRecord) error {
	if !payment.Method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method must be card or paypal")
	}
	if payment.Method == enums.PaymentMethodCard {
		if payment.CardNumber == "" || payment.ExpiryDate == "" ||
			payment.CVV == "" || payment.NameOnCard == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "card number, expiry, cvv and name on card are required")
		}
	}
	return nil
}
