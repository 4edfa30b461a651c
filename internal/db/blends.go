package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Blend statuses.
const (
	BlendStatusPending  = "pending"
	BlendStatusScraping = "scraping"
	BlendStatusReady    = "ready"
	BlendStatusFailed   = "failed"
)

// Blend is a two-user session: user A starts it, user B joins, and the blend
// is ready once both histories are scraped and enriched.
type Blend struct {
	ID          uuid.UUID  `json:"id"`
	UserA       string     `json:"user_a"`
	UserB       *string    `json:"user_b"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// CreateBlend opens a new blend session for the starting user.
func (db *DB) CreateBlend(ctx context.Context, userA string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO blends (user_a, status) VALUES ($1, $2) RETURNING id`,
		userA, BlendStatusPending,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create blend: %w", err)
	}
	return id, nil
}

// JoinBlend records the second user on an open blend.
func (db *DB) JoinBlend(ctx context.Context, blendID uuid.UUID, userB string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE blends SET user_b = $1 WHERE id = $2 AND user_b IS NULL`,
		userB, blendID,
	)
	if err != nil {
		return fmt.Errorf("failed to join blend: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("blend %s not found or already joined", blendID)
	}
	return nil
}

// UpdateBlendStatus moves a blend through its lifecycle. Terminal statuses
// stamp the completion time.
func (db *DB) UpdateBlendStatus(ctx context.Context, blendID uuid.UUID, status string) error {
	var err error
	if status == BlendStatusReady || status == BlendStatusFailed {
		_, err = db.pool.Exec(ctx,
			`UPDATE blends SET status = $1, completed_at = NOW() WHERE id = $2`, status, blendID)
	} else {
		_, err = db.pool.Exec(ctx,
			`UPDATE blends SET status = $1 WHERE id = $2`, status, blendID)
	}
	if err != nil {
		return fmt.Errorf("failed to update blend status: %w", err)
	}
	return nil
}

// GetBlend retrieves a blend by ID. Returns nil when no such blend exists.
func (db *DB) GetBlend(ctx context.Context, blendID uuid.UUID) (*Blend, error) {
	var blend Blend
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_a, user_b, status, created_at, completed_at
		 FROM blends WHERE id = $1`,
		blendID,
	).Scan(&blend.ID, &blend.UserA, &blend.UserB, &blend.Status, &blend.CreatedAt, &blend.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get blend: %w", err)
	}
	return &blend, nil
}
