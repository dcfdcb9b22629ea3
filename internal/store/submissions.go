package store

import (
	"fmt"
	"time"
)

// SubmissionRecord is one completed submit attempt.
type SubmissionRecord struct {
	ID            int64     `json:"id"`
	RFQRef        string    `json:"rfq_ref"`
	Recipient     string    `json:"recipient"`
	PDFPath       string    `json:"pdf_path"`
	DeckPath      string    `json:"deck_path"`
	Dispatched    bool      `json:"dispatched"`
	DispatchError string    `json:"dispatch_error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// RecordSubmission appends a submission row and returns its id.
func (s *Store) RecordSubmission(rec SubmissionRecord) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO submissions (rfq_ref, recipient, pdf_path, deck_path, dispatched, dispatch_error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.RFQRef, rec.Recipient, rec.PDFPath, rec.DeckPath, boolToInt(rec.Dispatched), rec.DispatchError)
	if err != nil {
		return 0, fmt.Errorf("failed to record submission: %w", err)
	}
	return res.LastInsertId()
}

// ListSubmissions returns all submissions, newest first.
func (s *Store) ListSubmissions() ([]SubmissionRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, rfq_ref, recipient, pdf_path, deck_path, dispatched, dispatch_error, created_at
		FROM submissions ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var out []SubmissionRecord
	for rows.Next() {
		var rec SubmissionRecord
		var dispatched int
		if err := rows.Scan(&rec.ID, &rec.RFQRef, &rec.Recipient, &rec.PDFPath,
			&rec.DeckPath, &dispatched, &rec.DispatchError, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Dispatched = dispatched != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
