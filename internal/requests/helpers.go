package requests

import (
	"database/sql"
	"errors"
	"time"
)

const requestColumns = "id, org_id, song_artist, song_title, normalized_artist, normalized_title, status, notification_sent, requester_name, requester_phone, requester_email, played_at, play_history_id, created_at, updated_at"

const historyColumns = "id, org_id, artist, title, normalized_artist, normalized_title, source, played_at, matched_request_id, created_at"

func scanRequest(scanner interface{ Scan(dest ...any) error }) (*Request, error) {
	var (
		id               string
		orgID            string
		songArtist       string
		songTitle        string
		normalizedArtist string
		normalizedTitle  string
		statusStr        string
		notificationSent sql.NullInt64
		requesterName    sql.NullString
		requesterPhone   sql.NullString
		requesterEmail   sql.NullString
		playedAtRaw      sql.NullString
		playHistoryID    sql.NullString
		createdRaw       string
		updatedRaw       string
	)

	if err := scanner.Scan(
		&id,
		&orgID,
		&songArtist,
		&songTitle,
		&normalizedArtist,
		&normalizedTitle,
		&statusStr,
		&notificationSent,
		&requesterName,
		&requesterPhone,
		&requesterEmail,
		&playedAtRaw,
		&playHistoryID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	req := &Request{
		ID:               id,
		OrgID:            orgID,
		SongArtist:       songArtist,
		SongTitle:        songTitle,
		NormalizedArtist: normalizedArtist,
		NormalizedTitle:  normalizedTitle,
		Status:           Status(statusStr),
		RequesterName:    requesterName.String,
		RequesterPhone:   requesterPhone.String,
		RequesterEmail:   requesterEmail.String,
		PlayHistoryID:    playHistoryID.String,
	}
	if notificationSent.Valid {
		req.NotificationSent = notificationSent.Int64 != 0
	}
	if playedAtRaw.Valid {
		if playedAt, err := parseTimeString(playedAtRaw.String); err == nil {
			req.PlayedAt = &playedAt
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		req.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		req.UpdatedAt = updated
	}
	return req, nil
}

func scanHistory(scanner interface{ Scan(dest ...any) error }) (*PlayHistory, error) {
	var (
		id               string
		orgID            string
		artist           string
		title            string
		normalizedArtist string
		normalizedTitle  string
		source           string
		playedAtRaw      string
		matchedRequestID sql.NullString
		createdRaw       string
	)

	if err := scanner.Scan(
		&id,
		&orgID,
		&artist,
		&title,
		&normalizedArtist,
		&normalizedTitle,
		&source,
		&playedAtRaw,
		&matchedRequestID,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	record := &PlayHistory{
		ID:               id,
		OrgID:            orgID,
		Artist:           artist,
		Title:            title,
		NormalizedArtist: normalizedArtist,
		NormalizedTitle:  normalizedTitle,
		Source:           source,
		MatchedRequestID: matchedRequestID.String,
	}
	if playedAt, err := parseTimeString(playedAtRaw); err == nil {
		record.PlayedAt = playedAt
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		record.CreatedAt = created
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
