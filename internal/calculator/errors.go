package calculator

import "errors"

// Validation failures. They describe caller input errors, are never retried, and are
// always returned before any output is produced. Detail is added with %w wrapping.
var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrNotAMember           = errors.New("not a member of the group")
	ErrSplitMismatch        = errors.New("split amounts do not match total")
	ErrPercentageMismatch   = errors.New("percentages do not add up to 100")
	ErrUnknownPolicy        = errors.New("unknown policy")
	ErrDuplicateParticipant = errors.New("duplicate participant")
)

var validationErrors = []struct {
	err    error
	reason string
}{
	{ErrInvalidAmount, "invalid_amount"},
	{ErrNotAMember, "not_a_member"},
	{ErrSplitMismatch, "split_mismatch"},
	{ErrPercentageMismatch, "percentage_mismatch"},
	{ErrUnknownPolicy, "unknown_policy"},
	{ErrDuplicateParticipant, "duplicate_participant"},
}

// IsValidation reports whether err is one of the calculator's validation failures.
func IsValidation(err error) bool {
	return Reason(err) != ""
}

// Reason returns a stable snake_case name for a validation failure, or "" for other errors.
func Reason(err error) string {
	for _, v := range validationErrors {
		if errors.Is(err, v.err) {
			return v.reason
		}
	}
	return ""
}
