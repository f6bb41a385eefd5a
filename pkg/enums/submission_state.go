package enums

// SubmissionState tracks the order finalization lifecycle for a session
// token. Submitting is entered at most once per token; Confirmed and Failed
// are terminal except for an explicit retry out of Failed.
type SubmissionState string

const (
	SubmissionIdle       SubmissionState = "idle"
	SubmissionSubmitting SubmissionState = "submitting"
	SubmissionConfirmed  SubmissionState = "confirmed"
	SubmissionFailed     SubmissionState = "failed"
)

var validSubmissionStates = []SubmissionState{
	SubmissionIdle,
	SubmissionSubmitting,
	SubmissionConfirmed,
	SubmissionFailed,
}

// String implements fmt.Stringer.
func (s SubmissionState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SubmissionState.
func (s SubmissionState) IsValid() bool {
	for _, candidate := range validSubmissionStates {
		if candidate == s {
			return true
		}
	}
	return false
}
