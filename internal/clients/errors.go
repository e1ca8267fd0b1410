package clients

import "fmt"

// TransportError reports that the classifier could not be reached or answered
// with a non-success status. StatusCode is 0 when no response was received.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("classifier request to %s failed with status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("classifier request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseShapeError reports a classifier reply that is not JSON or lacks the
// emotionPredictions[0].emotion scores.
type ResponseShapeError struct {
	Reason string
	Err    error
}

func (e *ResponseShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected classifier response: %s: %v", e.Reason, e.Err)
	}
	return "unexpected classifier response: " + e.Reason
}

func (e *ResponseShapeError) Unwrap() error { return e.Err }
