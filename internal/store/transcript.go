package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Transcript is a sentence that was sent to speech.
type Transcript struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptRepository provides CRUD operations for transcripts.
type TranscriptRepository struct {
	db *sql.DB
}

// Transcripts returns the transcript repository for this store.
func (s *Store) Transcripts() *TranscriptRepository {
	return &TranscriptRepository{db: s.db}
}

// Create inserts a transcript, assigning an ID and timestamp when unset.
func (r *TranscriptRepository) Create(t *Transcript) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(
		`INSERT INTO transcripts (id, session_id, text, created_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.SessionID, t.Text, t.CreatedAt,
	)
	return err
}

// GetByID retrieves a transcript by its ID.
func (r *TranscriptRepository) GetByID(id string) (*Transcript, error) {
	t := &Transcript{}
	err := r.db.QueryRow(
		`SELECT id, session_id, text, created_at FROM transcripts WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.SessionID, &t.Text, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns transcripts newest first. A limit of zero or less returns all.
func (r *TranscriptRepository) List(limit int) ([]*Transcript, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, session_id, text, created_at FROM transcripts
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transcripts []*Transcript
	for rows.Next() {
		t := &Transcript{}
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Text, &t.CreatedAt); err != nil {
			return nil, err
		}
		transcripts = append(transcripts, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transcripts, nil
}

// Delete removes a transcript by its ID.
func (r *TranscriptRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM transcripts WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Clear removes every transcript and returns how many were deleted.
func (r *TranscriptRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM transcripts`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
