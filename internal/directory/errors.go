package directory

import (
	"errors"
	"fmt"
)

var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrRequestFailed        = errors.New("directory request failed")
	ErrTimeout              = fmt.Errorf("%w: timeout", ErrRequestFailed)
)

// Category is the normalized failure taxonomy of directory requests.
type Category string

const (
	CategoryTimeout        Category = "timeout"
	CategoryOutage         Category = "provider_outage"
	CategoryBadData        Category = "bad_data"
	CategoryNotFound       Category = "not_found"
	CategoryAuthentication Category = "authentication"
	CategoryCircuitOpen    Category = "circuit_open"
)

// RequestError wraps a failed directory request. It matches ErrTimeout for
// timeouts and ErrRequestFailed for everything else.
type RequestError struct {
	Op         string
	Category   Category
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("directory %s [%s]", e.Op, e.Category)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RequestError) Unwrap() []error {
	sentinel := ErrRequestFailed
	if e.Category == CategoryTimeout {
		sentinel = ErrTimeout
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// GetCategory extracts the category from err, defaulting to provider outage.
func GetCategory(err error) Category {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Category
	}
	return CategoryOutage
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingRequiredField, name)
}
