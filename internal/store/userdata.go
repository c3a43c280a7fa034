package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/obelow/aria/internal/domain"
)

// GetUserData fetches the per-user aggregate record, defaulting to a zero
// count for users that have never uploaded.
func GetUserData(q sqlx.Ext, userID string) (*domain.UserData, error) {
	var data domain.UserData
	err := sqlx.Get(q, &data, `SELECT * FROM user_data WHERE user_id = ?`, userID)
	if IsNotFound(err) {
		return &domain.UserData{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user data: %w", err)
	}
	return &data, nil
}

// AdjustSongCount moves the user's song count by delta, creating the record
// on first use. Must run in the same transaction as the song write it
// accounts for; that is the only thing keeping the count honest.
func AdjustSongCount(q sqlx.Ext, userID string, delta int64) error {
	_, err := q.Exec(
		`INSERT INTO user_data (user_id, song_count) VALUES (?, MAX(0, ?))
		ON CONFLICT (user_id) DO UPDATE SET song_count = MAX(0, song_count + ?)`,
		userID, delta, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust song count for %s: %w", userID, err)
	}
	return nil
}
