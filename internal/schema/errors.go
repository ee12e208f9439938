package schema

import (
	"fmt"
	"strings"
)

// UnknownParameterError reports a parameter name that the source does not
// declare.
type UnknownParameterError struct {
	Name string
}

// Error returns the error message.
func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("unknown parameter: %s", e.Name)
}

// InvalidValueError reports a declared parameter whose value is outside its
// allowed domain.
type InvalidValueError struct {
	Name    string
	Value   string
	Allowed []string
	Reason  string
}

// Error returns the error message.
func (e *InvalidValueError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("invalid value %q for parameter %s: allowed values are %s",
			e.Value, e.Name, strings.Join(e.Allowed, ", "))
	}
	if e.Reason != "" {
		return fmt.Sprintf("invalid value %q for parameter %s: %s", e.Value, e.Name, e.Reason)
	}
	return fmt.Sprintf("invalid value %q for parameter %s", e.Value, e.Name)
}

// MissingRequiredParameterError reports a required parameter absent from the
// request.
type MissingRequiredParameterError struct {
	Name string
}

// Error returns the error message.
func (e *MissingRequiredParameterError) Error() string {
	return fmt.Sprintf("missing required parameter: %s", e.Name)
}
