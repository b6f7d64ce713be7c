package ballot

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with in-process state. It honors the same
// consumption semantics as the PostgreSQL store (check and consume under one
// lock, consumption guarded on the unused flag) so the workflow's invariants
// can be exercised without a database.
type MemoryStore struct {
	mu            sync.Mutex
	candidates    map[int64]string
	tokens        map[string]*memoryToken
	subscriptions map[string]*memorySubscription
	votes         []MemoryVote
}

type memoryToken struct {
	FacilityName string
	ExpiresAt    time.Time
	Used         bool
	UsedAt       time.Time
	IPAddress    string
}

type memorySubscription struct {
	GroupName    string
	FacilityName string
	Confirmed    bool
	HasVoted     bool
	VotedAt      time.Time
}

// MemoryVote mirrors a vote row: candidate, shared session id, timestamp,
// and nothing that identifies the voter.
type MemoryVote struct {
	CandidateID int64
	SessionID   string
	CreatedAt   time.Time
}

// NewMemory constructs an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		candidates:    make(map[int64]string),
		tokens:        make(map[string]*memoryToken),
		subscriptions: make(map[string]*memorySubscription),
	}
}

// AddCandidate registers a candidate eligible to receive votes.
func (s *MemoryStore) AddCandidate(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[id] = name
}

// AddToken registers an unused voting token for a facility.
func (s *MemoryStore) AddToken(token, facilityName string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = &memoryToken{FacilityName: facilityName, ExpiresAt: expiresAt}
}

// AddSubscription registers a newsletter subscription.
func (s *MemoryStore) AddSubscription(email, groupName, facilityName string, confirmed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[email] = &memorySubscription{
		GroupName:    groupName,
		FacilityName: facilityName,
		Confirmed:    confirmed,
	}
}

// TokenIP reports the source address recorded when the token was consumed.
func (s *MemoryStore) TokenIP(token string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok, ok := s.tokens[token]; ok {
		return tok.IPAddress
	}
	return ""
}

// Votes returns a snapshot of all recorded vote rows.
func (s *MemoryStore) Votes() []MemoryVote {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MemoryVote, len(s.votes))
	copy(out, s.votes)
	return out
}

func (s *MemoryStore) Check(_ context.Context, cred Credential, now time.Time) (VerifyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch c := cred.(type) {
	case TokenCredential:
		tok, ok := s.tokens[c.Token]
		if !ok {
			return VerifyResult{Valid: false, Reason: ReasonNotFound}, nil
		}
		if tok.Used {
			return VerifyResult{Valid: false, Reason: ReasonAlreadyUsed}, nil
		}
		if !now.Before(tok.ExpiresAt) {
			return VerifyResult{Valid: false, Reason: ReasonExpired}, nil
		}
		return VerifyResult{Valid: true, FacilityName: tok.FacilityName}, nil

	case EmailCredential:
		sub, ok := s.subscriptions[c.Email]
		if !ok {
			return VerifyResult{Valid: false, Reason: ReasonNotFound}, nil
		}
		if !sub.Confirmed {
			return VerifyResult{Valid: false, Reason: ReasonNotConfirmed}, nil
		}
		if sub.HasVoted {
			return VerifyResult{Valid: false, Reason: ReasonAlreadyUsed}, nil
		}
		return VerifyResult{Valid: true, GroupName: sub.GroupName, FacilityName: sub.FacilityName}, nil
	}

	return VerifyResult{}, validationf("credential is required")
}

func (s *MemoryStore) Submit(_ context.Context, cred Credential, candidateIDs []int64, sessionID string, now time.Time, sourceIP string) (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Same ordering as the PostgreSQL store: eligibility under the lock
	// first, candidate existence second, then record and consume.
	switch c := cred.(type) {
	case TokenCredential:
		tok, ok := s.tokens[c.Token]
		if !ok {
			return Receipt{}, &IneligibleError{Reason: ReasonNotFound}
		}
		if tok.Used {
			return Receipt{}, &IneligibleError{Reason: ReasonAlreadyUsed}
		}
		if !now.Before(tok.ExpiresAt) {
			return Receipt{}, &IneligibleError{Reason: ReasonExpired}
		}
		if err := s.checkCandidates(candidateIDs); err != nil {
			return Receipt{}, err
		}
		s.record(candidateIDs, sessionID, now)
		tok.Used = true
		tok.UsedAt = now
		tok.IPAddress = sourceIP
		return Receipt{SessionID: sessionID, VotedCount: len(candidateIDs), FacilityName: tok.FacilityName}, nil

	case EmailCredential:
		sub, ok := s.subscriptions[c.Email]
		if !ok {
			return Receipt{}, &IneligibleError{Reason: ReasonNotFound}
		}
		if !sub.Confirmed {
			return Receipt{}, &IneligibleError{Reason: ReasonNotConfirmed}
		}
		if sub.HasVoted {
			return Receipt{}, &IneligibleError{Reason: ReasonAlreadyUsed}
		}
		if err := s.checkCandidates(candidateIDs); err != nil {
			return Receipt{}, err
		}
		s.record(candidateIDs, sessionID, now)
		sub.HasVoted = true
		sub.VotedAt = now
		return Receipt{SessionID: sessionID, VotedCount: len(candidateIDs), GroupName: sub.GroupName, FacilityName: sub.FacilityName}, nil
	}

	return Receipt{}, validationf("credential is required")
}

func (s *MemoryStore) checkCandidates(candidateIDs []int64) error {
	for _, id := range candidateIDs {
		if _, ok := s.candidates[id]; !ok {
			return &NotFoundError{Message: "candidate not found"}
		}
	}
	return nil
}

func (s *MemoryStore) record(candidateIDs []int64, sessionID string, now time.Time) {
	for _, id := range candidateIDs {
		s.votes = append(s.votes, MemoryVote{CandidateID: id, SessionID: sessionID, CreatedAt: now})
	}
}
