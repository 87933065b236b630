package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration indicates a missing input or an unreadable local file.
	// It is always raised before any network request.
	ErrConfiguration = errors.New("configuration error")

	// ErrAuthentication indicates the credential exchange or a request was rejected for auth reasons.
	ErrAuthentication = errors.New("authentication error")

	// ErrNotFound indicates a repository, branch or reference could not be resolved.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the branch moved between the tip read and the reference update.
	// Re-run the whole sequence instead of retrying the update.
	ErrConflict = errors.New("concurrent modification")

	// ErrRejected indicates the provider refused to create an object (invalid path, mode, etc.).
	ErrRejected = errors.New("rejected by provider")

	// ErrTransport indicates a network failure or a 5xx/rate-limit response.
	ErrTransport = errors.New("transport error")
)

// Step names one stage of the commit-construction sequence.
type Step string

const (
	StepReadFile        Step = "read-file"
	StepResolveBranch   Step = "resolve-branch"
	StepReadTip         Step = "read-tip"
	StepCreateTree      Step = "create-tree"
	StepCreateCommit    Step = "create-commit"
	StepUpdateReference Step = "update-reference"
)

// StepError carries the failing step and the key that failed to resolve.
type StepError struct {
	Step Step
	Key  string
	Err  error
}

func (e *StepError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s failed for %q: %v", e.Step, e.Key, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// NewStepError wraps err with the step and key it happened on.
func NewStepError(step Step, key string, err error) error {
	return &StepError{Step: step, Key: key, Err: err}
}
