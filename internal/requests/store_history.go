package requests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"encore/internal/songtext"
)

// RecordPlay inserts a play history row for a detected track and returns it.
func (s *Store) RecordPlay(ctx context.Context, orgID, artist, title, source string, playedAt time.Time) (*PlayHistory, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, errors.New("org id is required")
	}
	if playedAt.IsZero() {
		playedAt = time.Now().UTC()
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO play_history (
            id, org_id, artist, title, normalized_artist, normalized_title,
            source, played_at, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		orgID,
		strings.TrimSpace(artist),
		strings.TrimSpace(title),
		songtext.Normalize(artist),
		songtext.Normalize(title),
		strings.TrimSpace(source),
		playedAt.UTC().Format(time.RFC3339Nano),
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert play history: %w", err)
	}

	return s.GetPlay(ctx, id)
}

// GetPlay fetches a play history record by identifier. Returns nil when absent.
func (s *Store) GetPlay(ctx context.Context, id string) (*PlayHistory, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM play_history WHERE id = ?`, id)
	record, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get play history: %w", err)
	}
	return record, nil
}

// LinkMatchedRequest records which request a play fulfilled. The link is
// immutable: a second link attempt on the same play is a silent no-op.
func (s *Store) LinkMatchedRequest(ctx context.Context, playID, requestID string) error {
	if _, err := s.execWithRetry(
		ctx,
		`UPDATE play_history SET matched_request_id = ?
         WHERE id = ? AND matched_request_id IS NULL`,
		requestID,
		playID,
	); err != nil {
		return fmt.Errorf("link matched request: %w", err)
	}
	return nil
}

// RecentPlays returns the latest play history rows for an organization,
// newest first.
func (s *Store) RecentPlays(ctx context.Context, orgID string, limit int) ([]*PlayHistory, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+historyColumns+` FROM play_history
         WHERE org_id = ? ORDER BY played_at DESC LIMIT ?`,
		orgID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query play history: %w", err)
	}
	defer rows.Close()

	var result []*PlayHistory
	for rows.Next() {
		record, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan play history: %w", err)
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
