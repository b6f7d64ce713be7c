package ballot

import (
	"context"
	"time"
)

// VerifyResult is the outcome of a read-only eligibility check.
type VerifyResult struct {
	Valid        bool   `json:"valid"`
	Reason       string `json:"reason,omitempty"`
	GroupName    string `json:"groupName,omitempty"`
	FacilityName string `json:"facilityName,omitempty"`
}

// Receipt summarizes one accepted ballot submission.
type Receipt struct {
	SessionID    string
	VotedCount   int
	GroupName    string
	FacilityName string
}

// Store is the persistence boundary of the voting workflow.
//
// Check must never mutate state. Submit executes the whole workflow in one
// all-or-nothing transaction and must guarantee that two concurrent calls
// holding the same credential cannot both succeed: implementations lock the
// credential row for the duration of the transaction and additionally guard
// the consumption update on the unused flag, aborting when zero rows change.
type Store interface {
	Check(ctx context.Context, cred Credential, now time.Time) (VerifyResult, error)
	Submit(ctx context.Context, cred Credential, candidateIDs []int64, sessionID string, now time.Time, sourceIP string) (Receipt, error)
}

// StatusReader exposes the global election circuit-breaker. Read through on
// every call; never cached in-process.
type StatusReader interface {
	ElectionClosed(ctx context.Context) (bool, error)
}
