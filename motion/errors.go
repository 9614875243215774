package motion

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrSkeletonMismatch is returned when a sequence lacks a joint the skeleton requires.
	ErrSkeletonMismatch = errors.New("skeleton mismatch")
	// ErrMalformedPose is returned for non-finite positions or rotation channels.
	ErrMalformedPose = errors.New("malformed pose data")
)

// Role identifies which side of a comparison a sequence plays.
type Role string

// The two sides of a comparison.
const (
	RoleReference Role = "reference"
	RoleCandidate Role = "candidate"
)

// CanonicalizationError locates a failure while canonicalizing one sequence.
type CanonicalizationError struct {
	Role  Role
	Frame int
	Joint string
	Err   error
}

func (e *CanonicalizationError) Error() string {
	return fmt.Sprintf("%s sequence frame %d joint %q: %v", e.Role, e.Frame, e.Joint, e.Err)
}

// Unwrap returns the underlying error.
func (e *CanonicalizationError) Unwrap() error {
	return e.Err
}

func newSkeletonMismatchError(role Role, missing []string) error {
	return errors.Wrapf(ErrSkeletonMismatch, "%s sequence is missing joints [%s]", role, strings.Join(missing, ", "))
}
