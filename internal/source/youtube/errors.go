package youtube

import (
	"encoding/json"
	"errors"
	"fmt"
)

// requestError is a non-200 API response, with the machine-readable
// reason preserved when the body carries one.
type requestError struct {
	statusCode int
	reason     string
	message    string
}

func newRequestError(statusCode int, body []byte) *requestError {
	re := &requestError{statusCode: statusCode}

	var parsed apiErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		re.message = parsed.Error.Message
		if len(parsed.Error.Errors) > 0 {
			re.reason = parsed.Error.Errors[0].Reason
		}
	}

	return re
}

func (e *requestError) Error() string {
	if e.reason != "" {
		return fmt.Sprintf("unexpected status %d (%s): %s", e.statusCode, e.reason, e.message)
	}
	return fmt.Sprintf("unexpected status: %d", e.statusCode)
}

func isCommentsDisabled(err error) bool {
	var re *requestError
	return errors.As(err, &re) && re.reason == "commentsDisabled"
}
