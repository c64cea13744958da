package payout

import (
	"fmt"

	"settlement/internal/pkg/errs"
)

// Status represents the decision state of a release request.
//
//	pending ──┬──> approved
//	          └──> rejected
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// StatusPending means the request awaits an admin decision.
	StatusPending

	// StatusApproved means the request was granted and the escrow released.
	// Final state.
	StatusApproved

	// StatusRejected means the request was declined with a reason. Final
	// state; a new request may be filed afterwards.
	StatusRejected
)

// getStatusStrings returns a map of Status values to their string
// representations. All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:  "unknown",
		StatusPending:  "pending",
		StatusApproved: "approved",
		StatusRejected: "rejected",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // StatusUnknown is intentionally excluded as it's invalid
	return map[Status]string{
		StatusPending:  "pending",
		StatusApproved: "approved",
		StatusRejected: "rejected",
	}
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("request status is invalid", fmt.Errorf("%d is not a valid request status", s))
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
		"request status is invalid",
		fmt.Errorf("%q is not a valid request status", value),
	)
}
