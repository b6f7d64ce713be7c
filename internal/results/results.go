package results

import (
	"context"
	"sort"
)

// CandidateTally is one row of the ranked results.
type CandidateTally struct {
	ID               int64  `db:"id" json:"id"`
	Name             string `db:"name" json:"name"`
	Age              *int   `db:"age" json:"age,omitempty"`
	FacilityName     string `db:"facility_name" json:"facility_name"`
	FacilityLocation string `db:"facility_location" json:"facility_location"`
	VoteCount        int64  `db:"vote_count" json:"vote_count"`
}

// FacilityParticipation breaks turnout down by facility.
type FacilityParticipation struct {
	FacilityName string `db:"facility_name" json:"facility_name"`
	Eligible     int64  `db:"eligible" json:"eligible"`
	Voted        int64  `db:"voted" json:"voted"`
}

// HistogramBucket counts how many ballots carried BallotSize candidates.
type HistogramBucket struct {
	BallotSize int   `json:"ballot_size"`
	Sessions   int64 `json:"sessions"`
}

// Statistics aggregates turnout figures derived from the vote table and the
// credential tables. It never references individual credentials.
type Statistics struct {
	TotalVotes        int64                   `json:"total_votes"`
	UniqueVoters      int64                   `json:"unique_voters"`
	Eligible          int64                   `json:"eligible"`
	Voted             int64                   `json:"voted"`
	ParticipationRate float64                 `json:"participation_rate"`
	PerFacility       []FacilityParticipation `json:"per_facility"`
	Histogram         []HistogramBucket       `json:"votes_per_session"`
}

// Report is the full admin results payload.
type Report struct {
	Results    []CandidateTally `json:"results"`
	Statistics Statistics       `json:"statistics"`
}

// Store supplies the raw aggregates. Implementations are read-only and
// tolerate lagging slightly behind in-flight submissions.
type Store interface {
	Tallies(ctx context.Context) ([]CandidateTally, error)
	SessionSizes(ctx context.Context) ([]int64, error)
	Participation(ctx context.Context) (eligible, voted int64, perFacility []FacilityParticipation, err error)
}

// Service computes ranked tallies and turnout statistics. Everything is
// recomputed per request; there is no cache to go stale.
type Service struct {
	store Store
}

// New constructs a results Service.
func New(store Store) *Service {
	return &Service{store: store}
}

// Report assembles the ranked results and statistics.
func (s *Service) Report(ctx context.Context) (Report, error) {
	tallies, err := s.store.Tallies(ctx)
	if err != nil {
		return Report{}, err
	}
	rankTallies(tallies)

	sizes, err := s.store.SessionSizes(ctx)
	if err != nil {
		return Report{}, err
	}

	eligible, voted, perFacility, err := s.store.Participation(ctx)
	if err != nil {
		return Report{}, err
	}
	sort.Slice(perFacility, func(i, j int) bool {
		return perFacility[i].FacilityName < perFacility[j].FacilityName
	})

	stats := Statistics{
		UniqueVoters: int64(len(sizes)),
		Eligible:     eligible,
		Voted:        voted,
		PerFacility:  perFacility,
		Histogram:    histogram(sizes),
	}
	for _, t := range tallies {
		stats.TotalVotes += t.VoteCount
	}
	if eligible > 0 {
		stats.ParticipationRate = float64(voted) / float64(eligible)
	}

	return Report{Results: tallies, Statistics: stats}, nil
}

// rankTallies orders by vote count descending, then candidate name ascending.
// The ordering is deterministic so display and export stay in lockstep.
func rankTallies(tallies []CandidateTally) {
	sort.SliceStable(tallies, func(i, j int) bool {
		if tallies[i].VoteCount != tallies[j].VoteCount {
			return tallies[i].VoteCount > tallies[j].VoteCount
		}
		return tallies[i].Name < tallies[j].Name
	})
}

func histogram(sizes []int64) []HistogramBucket {
	counts := make(map[int]int64)
	for _, n := range sizes {
		counts[int(n)]++
	}
	buckets := make([]HistogramBucket, 0, len(counts))
	for size, sessions := range counts {
		buckets = append(buckets, HistogramBucket{BallotSize: size, Sessions: sessions})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].BallotSize < buckets[j].BallotSize })
	return buckets
}
