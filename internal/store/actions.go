package store

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/obelow/aria/internal/domain"
)

// CreateUploadAction records a pending ingestion attempt. It is written
// before any processing so a crash mid-pipeline still leaves a trace.
func CreateUploadAction(q sqlx.Ext, action *domain.UploadAction) error {
	now := time.Now()
	action.Status = domain.ActionStatusPending
	action.CreatedAt = now
	action.UpdatedAt = now

	query := `INSERT INTO upload_actions (id, user_id, file_name, song_id, status, message, created_at, updated_at)
	VALUES (:id, :user_id, :file_name, :song_id, :status, :message, :created_at, :updated_at)`

	if _, err := sqlx.NamedExec(q, query, action); err != nil {
		return fmt.Errorf("failed to create upload action %s: %w", action.ID, err)
	}
	return nil
}

// FinalizeUploadAction moves a pending action to its terminal status. An
// action already finalized is left alone.
func FinalizeUploadAction(q sqlx.Ext, id string, status domain.ActionStatus, message *string) error {
	_, err := q.Exec(
		`UPDATE upload_actions SET status = ?, message = ?, updated_at = ? WHERE id = ? AND status = ?`,
		status, message, time.Now(), id, domain.ActionStatusPending)
	if err != nil {
		return fmt.Errorf("failed to finalize upload action %s: %w", id, err)
	}
	return nil
}

func GetUploadAction(q sqlx.Ext, id string) (*domain.UploadAction, error) {
	var action domain.UploadAction
	err := sqlx.Get(q, &action, `SELECT * FROM upload_actions WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// ListUploadActions returns the user's upload history, newest first.
func ListUploadActions(q sqlx.Ext, userID string) ([]domain.UploadAction, error) {
	var actions []domain.UploadAction
	err := sqlx.Select(q, &actions,
		`SELECT * FROM upload_actions WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload actions: %w", err)
	}
	return actions, nil
}
