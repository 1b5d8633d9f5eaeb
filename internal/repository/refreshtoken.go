package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// RefreshTokenRepository is the session ledger: at most one live refresh
// token row per user, enforced by a UNIQUE key on user_id.
type RefreshTokenRepository struct {
	db *sql.DB
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository.
func NewRefreshTokenRepository(db *sql.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Replace atomically removes any existing ledger row for the user and inserts
// the new token. Running both statements in one transaction keeps the
// "zero or one row per user" invariant under concurrent logins.
func (r *RefreshTokenRepository) Replace(ctx context.Context, userID int64, token string, expiresAt time.Time) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, userID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES (?, ?, ?)`,
		userID, token, expiresAt,
	)
	return err
}

// Exists reports whether the ledger holds this exact token for the user with
// an expiry after now. Both the user ID and the token string must match, so a
// structurally valid token that was replaced by a newer login does not pass.
func (r *RefreshTokenRepository) Exists(ctx context.Context, userID int64, token string, now time.Time) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM refresh_tokens WHERE user_id = ? AND token = ? AND expires_at > ? LIMIT 1`,
		userID, token, now,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteByUser removes the user's ledger row. Deleting zero rows is not an
// error, which makes logout idempotent.
func (r *RefreshTokenRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, userID)
	return err
}
