package takeoff

import "fmt"

// ExtractionError is a failure to read a drawing's text or geometry. The
// analyzer turns it into a result with an extraction-failed question
// rather than returning it.
type ExtractionError struct {
	Stage string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
