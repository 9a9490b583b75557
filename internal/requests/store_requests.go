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

// NewRequest carries the intake fields for a crowd request. Normalized artist
// and title are computed here with the same routine the matcher uses on
// detected tracks, so both sides compare canonical forms.
type NewRequest struct {
	OrgID          string
	SongArtist     string
	SongTitle      string
	RequesterName  string
	RequesterPhone string
	RequesterEmail string
	Status         Status
}

// CreateRequest inserts a new crowd request and returns the stored row.
func (s *Store) CreateRequest(ctx context.Context, intake NewRequest) (*Request, error) {
	orgID := strings.TrimSpace(intake.OrgID)
	if orgID == "" {
		return nil, errors.New("org id is required")
	}
	if strings.TrimSpace(intake.SongTitle) == "" {
		return nil, errors.New("song title is required")
	}

	status := intake.Status
	if status == "" {
		status = StatusNew
	}
	if _, ok := statusSet[status]; !ok {
		return nil, fmt.Errorf("unknown status %q", status)
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO crowd_requests (
            id, org_id, song_artist, song_title, normalized_artist, normalized_title,
            status, notification_sent, requester_name, requester_phone, requester_email,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?)`,
		id,
		orgID,
		strings.TrimSpace(intake.SongArtist),
		strings.TrimSpace(intake.SongTitle),
		songtext.Normalize(intake.SongArtist),
		songtext.Normalize(intake.SongTitle),
		status,
		nullableString(strings.TrimSpace(intake.RequesterName)),
		nullableString(strings.TrimSpace(intake.RequesterPhone)),
		nullableString(strings.TrimSpace(intake.RequesterEmail)),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert request: %w", err)
	}

	return s.GetRequest(ctx, id)
}

// GetRequest fetches a request by identifier. Returns nil when absent.
func (s *Store) GetRequest(ctx context.Context, id string) (*Request, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM crowd_requests WHERE id = ?`, id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

// ActiveRequests returns the matching candidates for an organization, ordered
// by creation time so ties resolve first-seen-first.
func (s *Store) ActiveRequests(ctx context.Context, orgID string) ([]*Request, error) {
	return s.ListRequests(ctx, orgID, activeStatuses...)
}

// ListRequests returns requests for an organization filtered by status set
// (or all statuses when none is provided), ordered by creation time.
func (s *Store) ListRequests(ctx context.Context, orgID string, statuses ...Status) ([]*Request, error) {
	baseQuery := `SELECT ` + requestColumns + ` FROM crowd_requests WHERE org_id = ?`
	orderClause := ` ORDER BY created_at`

	args := []any{orgID}
	query := baseQuery
	if len(statuses) > 0 {
		placeholders := makePlaceholders(len(statuses))
		query += ` AND status IN (` + placeholders + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += orderClause

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var result []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

// UpdateStatus sets a request's status without touching other fields.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) error {
	if _, ok := statusSet[status]; !ok {
		return fmt.Errorf("unknown status %q", status)
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE crowd_requests SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("request %s not found", id)
	}
	return nil
}

// MarkPlaying transitions a matched request to playing and retires any other
// playing request in the same organization to played.
//
// Both steps are targeted updates rather than a read-modify-write of the full
// request set, so concurrent intake changes on unrelated requests are never
// clobbered. The two statements are deliberately not wrapped in a transaction
// spanning both watchers; a rare cross-watcher race can briefly leave two
// requests playing and settles on the next detection.
func (s *Store) MarkPlaying(ctx context.Context, id, orgID string, playedAt time.Time, playHistoryID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	if _, err := s.execWithRetry(
		ctx,
		`UPDATE crowd_requests SET status = ?, updated_at = ?
         WHERE org_id = ? AND status = ? AND id != ?`,
		StatusPlayed,
		now,
		orgID,
		StatusPlaying,
		id,
	); err != nil {
		return fmt.Errorf("retire playing requests: %w", err)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE crowd_requests
         SET status = ?, played_at = ?, play_history_id = ?, updated_at = ?
         WHERE id = ?`,
		StatusPlaying,
		playedAt.UTC().Format(time.RFC3339Nano),
		nullableString(playHistoryID),
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark playing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("request %s not found", id)
	}
	return nil
}

// MarkNotified sets the notification-sent flag if it is not already set.
// The compare-and-swap form guarantees at-most-once delivery accounting even
// when two matches race: exactly one caller observes claimed=true.
func (s *Store) MarkNotified(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE crowd_requests SET notification_sent = 1, updated_at = ?
         WHERE id = ? AND notification_sent = 0`,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return false, fmt.Errorf("mark notified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark notified rows: %w", err)
	}
	return affected > 0, nil
}
