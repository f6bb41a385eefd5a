package enums

import "fmt"

// CheckoutStep identifies a stage of the checkout workflow. Steps are
// ordered; Complete is terminal and cannot be retreated from.
type CheckoutStep string

const (
	StepAddress  CheckoutStep = "address"
	StepServices CheckoutStep = "services"
	StepSchedule CheckoutStep = "schedule"
	StepContact  CheckoutStep = "contact"
	StepPayment  CheckoutStep = "payment"
	StepComplete CheckoutStep = "complete"
)

var orderedCheckoutSteps = []CheckoutStep{
	StepAddress,
	StepServices,
	StepSchedule,
	StepContact,
	StepPayment,
	StepComplete,
}

// OrderedCheckoutSteps returns the workflow steps in transition order.
func OrderedCheckoutSteps() []CheckoutStep {
	steps := make([]CheckoutStep, len(orderedCheckoutSteps))
	copy(steps, orderedCheckoutSteps)
	return steps
}

// String implements fmt.Stringer.
func (s CheckoutStep) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CheckoutStep.
func (s CheckoutStep) IsValid() bool {
	for _, candidate := range orderedCheckoutSteps {
		if candidate == s {
			return true
		}
	}
	return false
}

// Index returns the position of the step in the workflow, or -1.
func (s CheckoutStep) Index() int {
	for i, candidate := range orderedCheckoutSteps {
		if candidate == s {
			return i
		}
	}
	return -1
}

// ParseCheckoutStep converts raw input into a CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range orderedCheckoutSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}
