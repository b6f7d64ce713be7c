package results

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"heimwahl/internal/config"
	"heimwahl/internal/db"
)

// PostgresStore reads aggregates straight from PostgreSQL, without locking.
type PostgresStore struct {
	pool *pgxpool.Pool
	mode string
}

// NewPostgres constructs a PostgreSQL-backed results store for the
// deployment's credential mode.
func NewPostgres(pool *pgxpool.Pool, mode string) *PostgresStore {
	return &PostgresStore{pool: pool, mode: mode}
}

func (s *PostgresStore) Tallies(ctx context.Context) ([]CandidateTally, error) {
	var tallies []CandidateTally
	err := db.Select(ctx, s.pool, &tallies, `
		SELECT
			c.id,
			c.name,
			c.age,
			c.facility_name,
			c.facility_location,
			COUNT(v.id) AS vote_count
		FROM candidates c
		LEFT JOIN votes v ON v.candidate_id = c.id
		GROUP BY c.id
		ORDER BY vote_count DESC, c.name ASC`)
	return tallies, err
}

func (s *PostgresStore) SessionSizes(ctx context.Context) ([]int64, error) {
	var sizes []int64
	err := db.Select(ctx, s.pool, &sizes, `
		SELECT COUNT(*) FROM votes GROUP BY session_id`)
	return sizes, err
}

func (s *PostgresStore) Participation(ctx context.Context) (int64, int64, []FacilityParticipation, error) {
	var perFacility []FacilityParticipation
	var totals struct {
		Eligible int64 `db:"eligible"`
		Voted    int64 `db:"voted"`
	}

	if s.mode == config.CredentialModeEmail {
		if err := db.Select(ctx, s.pool, &perFacility, `
			SELECT
				facility_name,
				COUNT(*) FILTER (WHERE confirmed) AS eligible,
				COUNT(*) FILTER (WHERE confirmed AND has_voted) AS voted
			FROM newsletter_subscriptions
			GROUP BY facility_name`); err != nil {
			return 0, 0, nil, err
		}
		if err := db.Get(ctx, s.pool, &totals, `
			SELECT
				COUNT(*) FILTER (WHERE confirmed) AS eligible,
				COUNT(*) FILTER (WHERE confirmed AND has_voted) AS voted
			FROM newsletter_subscriptions`); err != nil {
			return 0, 0, nil, err
		}
		return totals.Eligible, totals.Voted, perFacility, nil
	}

	if err := db.Select(ctx, s.pool, &perFacility, `
		SELECT
			f.name AS facility_name,
			COUNT(vt.id) AS eligible,
			COUNT(vt.id) FILTER (WHERE vt.used) AS voted
		FROM facilities f
		LEFT JOIN voting_tokens vt ON vt.facility_id = f.id
		GROUP BY f.name`); err != nil {
		return 0, 0, nil, err
	}
	if err := db.Get(ctx, s.pool, &totals, `
		SELECT
			COUNT(*) AS eligible,
			COUNT(*) FILTER (WHERE used) AS voted
		FROM voting_tokens`); err != nil {
		return 0, 0, nil, err
	}
	return totals.Eligible, totals.Voted, perFacility, nil
}
