package ballot

import (
	"context"
	"strings"
	"time"

	"heimwahl/internal/config"
)

// Service validates ballots and drives the submission workflow. All state
// lives in the Store; the service itself is safe for concurrent use.
type Service struct {
	store     Store
	status    StatusReader
	mode      string
	maxBallot int
	now       func() time.Time
}

// New constructs a Service for the deployment's credential mode and ballot cap.
func New(store Store, status StatusReader, mode string, maxBallot int) *Service {
	return &Service{
		store:     store,
		status:    status,
		mode:      mode,
		maxBallot: maxBallot,
		now:       time.Now,
	}
}

// Verify performs the read-only eligibility check. Ineligible credentials
// produce a VerifyResult with a reason, not an error; errors are reserved
// for malformed input and store failures.
func (s *Service) Verify(ctx context.Context, cred Credential) (VerifyResult, error) {
	if err := s.checkCredentialShape(cred); err != nil {
		return VerifyResult{}, err
	}

	closed, err := s.status.ElectionClosed(ctx)
	if err != nil {
		return VerifyResult{}, err
	}
	if closed {
		return VerifyResult{Valid: false, Reason: ReasonElectionClosed}, nil
	}

	return s.store.Check(ctx, cred, s.now())
}

// Submit validates the ballot shape and runs the transactional workflow.
func (s *Service) Submit(ctx context.Context, cred Credential, candidateIDs []int64, sourceIP string) (Receipt, error) {
	if err := s.checkCredentialShape(cred); err != nil {
		return Receipt{}, err
	}
	if err := s.validateBallot(candidateIDs); err != nil {
		return Receipt{}, err
	}

	closed, err := s.status.ElectionClosed(ctx)
	if err != nil {
		return Receipt{}, err
	}
	if closed {
		return Receipt{}, &IneligibleError{Reason: ReasonElectionClosed}
	}

	sessionID := NewSecret()
	return s.store.Submit(ctx, cred, candidateIDs, sessionID, s.now(), sourceIP)
}

func (s *Service) checkCredentialShape(cred Credential) error {
	switch c := cred.(type) {
	case TokenCredential:
		if s.mode != config.CredentialModeToken {
			return validationf("this election votes by email, not by token")
		}
		if strings.TrimSpace(c.Token) == "" {
			return validationf("token is required")
		}
	case EmailCredential:
		if s.mode != config.CredentialModeEmail {
			return validationf("this election votes by token, not by email")
		}
		if strings.TrimSpace(c.Email) == "" {
			return validationf("email is required")
		}
	default:
		return validationf("credential is required")
	}
	return nil
}

func (s *Service) validateBallot(candidateIDs []int64) error {
	if len(candidateIDs) == 0 {
		return validationf("at least one candidate must be selected")
	}
	if len(candidateIDs) > s.maxBallot {
		return validationf("at most %d candidates may be selected", s.maxBallot)
	}
	seen := make(map[int64]struct{}, len(candidateIDs))
	for _, id := range candidateIDs {
		if _, dup := seen[id]; dup {
			return validationf("candidate %d appears more than once", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
