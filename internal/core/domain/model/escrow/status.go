package escrow

import (
	"fmt"

	"settlement/internal/pkg/errs"
)

// Status represents the state of the held funds.
//
// An escrow starts held and ends exactly once, either released to the
// receiving parties or refunded to the buyer:
//
//	held ──┬──> released
//	       └──> refunded
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// StatusHeld means the funds are frozen and belong to no party yet.
	StatusHeld

	// StatusReleased means the funds were settled to seller, agent and
	// platform. Final state.
	StatusReleased

	// StatusRefunded means the funds went back to the buyer. Final state.
	StatusRefunded
)

// getStatusStrings returns a map of Status values to their string
// representations. All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:  "unknown",
		StatusHeld:     "held",
		StatusReleased: "released",
		StatusRefunded: "refunded",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // StatusUnknown is intentionally excluded as it's invalid
	return map[Status]string{
		StatusHeld:     "held",
		StatusReleased: "released",
		StatusRefunded: "refunded",
	}
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("escrow status is invalid", fmt.Errorf("%d is not a valid escrow status", s))
	}
	return nil
}

// String returns the snake_case name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// StatusFromString parses the persisted representation back into a Status.
func StatusFromString(value string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == value {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause(
		"escrow status is invalid",
		fmt.Errorf("%q is not a valid escrow status", value),
	)
}
