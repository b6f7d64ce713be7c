package ballot

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"heimwahl/internal/db"
)

// PostgresStore runs the voting workflow against PostgreSQL. The credential
// row is locked with SELECT ... FOR UPDATE for the duration of the
// transaction; the consumption UPDATE additionally guards on the unused flag
// so a lost race can never commit.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed ballot store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Check(ctx context.Context, cred Credential, now time.Time) (VerifyResult, error) {
	switch c := cred.(type) {
	case TokenCredential:
		var row struct {
			Used         bool      `db:"used"`
			ExpiresAt    time.Time `db:"expires_at"`
			FacilityName string    `db:"facility_name"`
		}
		err := db.Get(ctx, s.pool, &row, `
			SELECT vt.used, vt.expires_at, f.name AS facility_name
			FROM voting_tokens vt
			JOIN facilities f ON f.id = vt.facility_id
			WHERE vt.token = $1`, c.Token)
		if errors.Is(err, pgx.ErrNoRows) {
			return VerifyResult{Valid: false, Reason: ReasonNotFound}, nil
		}
		if err != nil {
			return VerifyResult{}, err
		}
		if row.Used {
			return VerifyResult{Valid: false, Reason: ReasonAlreadyUsed}, nil
		}
		if !now.Before(row.ExpiresAt) {
			return VerifyResult{Valid: false, Reason: ReasonExpired}, nil
		}
		return VerifyResult{Valid: true, FacilityName: row.FacilityName}, nil

	case EmailCredential:
		var row struct {
			Confirmed    bool   `db:"confirmed"`
			HasVoted     bool   `db:"has_voted"`
			GroupName    string `db:"group_name"`
			FacilityName string `db:"facility_name"`
		}
		err := db.Get(ctx, s.pool, &row, `
			SELECT confirmed, has_voted, group_name, facility_name
			FROM newsletter_subscriptions
			WHERE email = $1`, c.Email)
		if errors.Is(err, pgx.ErrNoRows) {
			return VerifyResult{Valid: false, Reason: ReasonNotFound}, nil
		}
		if err != nil {
			return VerifyResult{}, err
		}
		if !row.Confirmed {
			return VerifyResult{Valid: false, Reason: ReasonNotConfirmed}, nil
		}
		if row.HasVoted {
			return VerifyResult{Valid: false, Reason: ReasonAlreadyUsed}, nil
		}
		return VerifyResult{Valid: true, GroupName: row.GroupName, FacilityName: row.FacilityName}, nil
	}

	return VerifyResult{}, validationf("credential is required")
}

func (s *PostgresStore) Submit(ctx context.Context, cred Credential, candidateIDs []int64, sessionID string, now time.Time, sourceIP string) (receipt Receipt, err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return Receipt{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Re-check eligibility under the row lock; the earlier read-only check
	// is not trusted here.
	switch c := cred.(type) {
	case TokenCredential:
		var (
			tokenID   string
			used      bool
			expiresAt time.Time
			facility  string
		)
		row := tx.QueryRow(ctx, `
			SELECT vt.id, vt.used, vt.expires_at, f.name
			FROM voting_tokens vt
			JOIN facilities f ON f.id = vt.facility_id
			WHERE vt.token = $1
			FOR UPDATE OF vt`, c.Token)
		if scanErr := row.Scan(&tokenID, &used, &expiresAt, &facility); scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				return Receipt{}, &IneligibleError{Reason: ReasonNotFound}
			}
			return Receipt{}, scanErr
		}
		if used {
			return Receipt{}, &IneligibleError{Reason: ReasonAlreadyUsed}
		}
		if !now.Before(expiresAt) {
			return Receipt{}, &IneligibleError{Reason: ReasonExpired}
		}

		if err = insertVotes(ctx, tx, candidateIDs, sessionID, now); err != nil {
			return Receipt{}, err
		}

		tag, execErr := tx.Exec(ctx, `
			UPDATE voting_tokens
			SET used = TRUE, used_at = $2, ip_address = $3
			WHERE id = $1 AND used = FALSE`, tokenID, now, sourceIP)
		if execErr != nil {
			return Receipt{}, execErr
		}
		if tag.RowsAffected() != 1 {
			return Receipt{}, &IneligibleError{Reason: ReasonAlreadyUsed}
		}
		receipt = Receipt{SessionID: sessionID, VotedCount: len(candidateIDs), FacilityName: facility}

	case EmailCredential:
		var (
			subID     string
			confirmed bool
			hasVoted  bool
			group     string
			facility  string
		)
		row := tx.QueryRow(ctx, `
			SELECT id, confirmed, has_voted, group_name, facility_name
			FROM newsletter_subscriptions
			WHERE email = $1
			FOR UPDATE`, c.Email)
		if scanErr := row.Scan(&subID, &confirmed, &hasVoted, &group, &facility); scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				return Receipt{}, &IneligibleError{Reason: ReasonNotFound}
			}
			return Receipt{}, scanErr
		}
		if !confirmed {
			return Receipt{}, &IneligibleError{Reason: ReasonNotConfirmed}
		}
		if hasVoted {
			return Receipt{}, &IneligibleError{Reason: ReasonAlreadyUsed}
		}

		if err = insertVotes(ctx, tx, candidateIDs, sessionID, now); err != nil {
			return Receipt{}, err
		}

		tag, execErr := tx.Exec(ctx, `
			UPDATE newsletter_subscriptions
			SET has_voted = TRUE, voted_at = $2
			WHERE id = $1 AND has_voted = FALSE`, subID, now)
		if execErr != nil {
			return Receipt{}, execErr
		}
		if tag.RowsAffected() != 1 {
			return Receipt{}, &IneligibleError{Reason: ReasonAlreadyUsed}
		}
		receipt = Receipt{SessionID: sessionID, VotedCount: len(candidateIDs), GroupName: group, FacilityName: facility}

	default:
		return Receipt{}, validationf("credential is required")
	}

	if err = tx.Commit(ctx); err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

func insertVotes(ctx context.Context, tx pgx.Tx, candidateIDs []int64, sessionID string, now time.Time) error {
	var found int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM candidates WHERE id = ANY($1)`, candidateIDs).Scan(&found); err != nil {
		return err
	}
	if found != len(candidateIDs) {
		return &NotFoundError{Message: "candidate not found"}
	}

	for _, candidateID := range candidateIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO votes (candidate_id, session_id, created_at)
			VALUES ($1, $2, $3)`, candidateID, sessionID, now); err != nil {
			return err
		}
	}
	return nil
}
