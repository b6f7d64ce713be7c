package ballot

import "fmt"

// Reason strings surfaced to voters. These are part of the public API
// contract; the verify endpoint returns them verbatim.
const (
	ReasonNotFound       = "credential not found"
	ReasonAlreadyUsed    = "already used"
	ReasonExpired        = "expired"
	ReasonNotConfirmed   = "not confirmed"
	ReasonElectionClosed = "election closed"
)

// ValidationError reports a malformed ballot or credential. Recoverable by
// the caller; never retried automatically.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IneligibleError reports a credential that cannot vote: unknown, consumed,
// expired, unconfirmed, or the election is closed. Terminal for that
// credential.
type IneligibleError struct {
	Reason string
}

func (e *IneligibleError) Error() string { return e.Reason }

// NotFoundError reports a ballot line referencing a candidate that does not
// exist. The whole submission aborts.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }
