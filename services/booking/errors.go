package booking

import (
	"errors"
	"fmt"

	"mindbloom/services/phms"
)

var (
	ErrMissingSelection  = errors.New("date, time and slot must be selected")
	ErrUnknownTime       = errors.New("time is not available on the selected date")
	ErrNoAppointment     = errors.New("no appointment to act on")
	ErrInvalidTransition = errors.New("action not allowed in the current step")
	ErrInFlight          = errors.New("a request is already in progress")
)

// Message converts any flow error into the sentence shown to the user.
// action completes "Failed to ...", e.g. "book your appointment".
func Message(action string, err error) string {
	var apiErr *phms.APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, phms.ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, phms.ErrUnavailable):
		return fmt.Sprintf("Failed to %s. The server could not be reached, please try again.", action)
	case errors.Is(err, ErrMissingSelection):
		return "Please select a date and time first."
	case errors.Is(err, ErrUnknownTime):
		return "That time is no longer available. Please pick another one."
	case errors.Is(err, ErrNoAppointment):
		return "There is no appointment to update."
	case errors.Is(err, ErrInvalidTransition):
		return "That action is not available right now."
	case errors.Is(err, ErrInFlight):
		return "A request is already in progress. Please wait."
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return fmt.Sprintf("Failed to %s: %s", action, apiErr.Message)
		}
		return fmt.Sprintf("Failed to %s (status %d). Please try again.", action, apiErr.Status)
	default:
		return fmt.Sprintf("Failed to %s. Please try again.", action)
	}
}
