package services

import (
	"errors"
	"fmt"

	"github.com/Bekzat04/sportsfest-system/repositories"
)

// Errors shared across services and mapped to HTTP statuses in handlers.
var (
	// Not found
	ErrNotFound              = errors.New("requested resource not found")
	ErrPlayerNotFound        = errors.New("player not found")
	ErrTeamNotFound          = errors.New("team not found")
	ErrSportNotFound         = errors.New("sport not found")
	ErrFixtureNotFound       = errors.New("fixture not found")
	ErrParticipationNotFound = errors.New("participation not found")

	// Validation and business rules
	ErrValidationFailed = errors.New("validation failed")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrNoQualifiers     = errors.New("no qualifiers nominated")

	// Conflicts: optimistic-concurrency losses. Callers must refetch and
	// resubmit; the engine never merges or retries on their behalf.
	ErrConflict           = errors.New("conflict with concurrent update")
	ErrTeamNameConflict   = errors.New("team name is already in use")
	ErrEnrollmentConflict = errors.New("player is already enrolled for this sport")
	ErrCaptaincyConflict  = errors.New("player is already a captain for this sport")

	// Temporal and state-machine guards
	ErrNotYetPlayable     = errors.New("fixture date is in the future, results cannot be recorded yet")
	ErrLockedResult       = errors.New("fixture result is locked and cannot be changed")
	ErrIrreversibleResult = errors.New("fixture has a recorded result and cannot be deleted")

	// Authentication and authorization
	ErrInvalidCredentials   = errors.New("invalid registration number or password")
	ErrRegNumberTaken       = errors.New("registration number is already in use")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current actor")
	ErrMustBeCaptain        = errors.New("only a designated captain can register a team")
	ErrCannotReplaceCaptain = errors.New("the captain cannot be replaced, reassign captaincy instead")
)

// ErrStoreUnavailable propagates roster store infrastructure failures. It is
// the only error class a caller may retry with backoff.
var ErrStoreUnavailable = repositories.ErrStoreUnavailable

// Rule names reported by the eligibility validator. Rules are evaluated in a
// fixed order and the first failure wins, so a reason is deterministic for a
// given candidate and snapshot.
const (
	RuleCompleteness       = "completeness"
	RuleSelfInclusion      = "self_inclusion"
	RuleDuplicate          = "duplicate"
	RuleHomogeneity        = "homogeneity"
	RuleCapacity           = "capacity"
	RuleCaptainExclusivity = "captain_exclusivity"
)

// ValidationError is a deterministic rule failure. Its reason is safe to show
// verbatim to the end user and is never worth retrying unchanged.
type ValidationError struct {
	Rule   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Rule, e.Reason)
}

// Is lets errors.Is(err, ErrValidationFailed) match any rule failure.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func newValidationError(rule, format string, args ...interface{}) error {
	return &ValidationError{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

// conflictError tags a sentinel so errors.Is(err, ErrConflict) also matches.
type conflictError struct {
	sentinel error
}

func (e *conflictError) Error() string { return e.sentinel.Error() }

func (e *conflictError) Is(target error) bool {
	return target == ErrConflict || target == e.sentinel
}

func asConflict(sentinel error) error {
	return &conflictError{sentinel: sentinel}
}
