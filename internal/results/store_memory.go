package results

import "context"

// MemoryStore is a fixture-backed Store for tests and local development.
type MemoryStore struct {
	Candidates     []CandidateTally
	Sessions       []int64
	EligibleTotal  int64
	VotedTotal     int64
	Facilities     []FacilityParticipation
}

func (s *MemoryStore) Tallies(context.Context) ([]CandidateTally, error) {
	out := make([]CandidateTally, len(s.Candidates))
	copy(out, s.Candidates)
	return out, nil
}

func (s *MemoryStore) SessionSizes(context.Context) ([]int64, error) {
	out := make([]int64, len(s.Sessions))
	copy(out, s.Sessions)
	return out, nil
}

func (s *MemoryStore) Participation(context.Context) (int64, int64, []FacilityParticipation, error) {
	out := make([]FacilityParticipation, len(s.Facilities))
	copy(out, s.Facilities)
	return s.EligibleTotal, s.VotedTotal, out, nil
}
