package httpclient

import "fmt"

// RetrievalError reports a failed fetch: either a transport-level failure
// (Err set, StatusCode zero) or a non-success HTTP status. It is surfaced to
// the caller unchanged so bad parameters and unreachable providers stay
// distinguishable.
type RetrievalError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

// Error returns the error message.
func (e *RetrievalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("retrieval failed for %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("retrieval failed for %s: HTTP %s", e.URL, e.Status)
}

// Unwrap returns the underlying transport error, if any.
func (e *RetrievalError) Unwrap() error {
	return e.Err
}
