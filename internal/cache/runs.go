package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fragmede/threadprep/internal/thread"
)

// Run describes one dataset build.
type Run struct {
	ID        string
	Source    string
	Records   int
	Skipped   int
	Roots     int
	Pruned    int
	Rows      int
	CreatedAt time.Time
}

// ThreadSummary is one tree of a run, for listing.
type ThreadSummary struct {
	LinkID   string
	RootText string
	Rows     int
	MaxDepth int
	Images   int // rows with at least one image
}

// PutRun stores a run and its rows in one transaction.
func (d *DB) PutRun(run Run, rows []thread.Row) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if _, err := tx.Exec(`INSERT INTO runs (id, source, records, skipped, roots, pruned, row_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, nullStr(run.Source), run.Records, run.Skipped, run.Roots, run.Pruned,
		len(rows), run.CreatedAt.Unix()); err != nil {
		return fmt.Errorf("storing run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO dataset_rows
		(run_id, seq, id, link_id, parent_id, depth, text, label, context, images)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range rows {
		ctxJSON, _ := json.Marshal(r.Context)
		imgJSON, _ := json.Marshal(r.Images)
		if _, err := stmt.Exec(run.ID, i, r.ID, r.LinkID, nullStr(r.ParentID), r.Depth,
			r.Text, r.Label, string(ctxJSON), string(imgJSON)); err != nil {
			return fmt.Errorf("storing row %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// Runs returns the most recent runs first.
func (d *DB) Runs(limit int) ([]Run, error) {
	rows, err := d.db.Query(`SELECT id, source, records, skipped, roots, pruned, row_count, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Run
	for rows.Next() {
		var r Run
		var source sql.NullString
		var createdAt int64
		if err := rows.Scan(&r.ID, &source, &r.Records, &r.Skipped, &r.Roots, &r.Pruned, &r.Rows, &createdAt); err != nil {
			return nil, err
		}
		r.Source = source.String
		r.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, r)
	}
	return result, rows.Err()
}

// LatestRun returns the newest run, or nil when there is none.
func (d *DB) LatestRun() (*Run, error) {
	runs, err := d.Runs(1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

// Threads summarises the trees of a run in export order.
func (d *DB) Threads(runID string) ([]ThreadSummary, error) {
	rows, err := d.db.Query(`SELECT link_id,
			COALESCE(MAX(CASE WHEN depth = 0 THEN text END), ''),
			COUNT(*), MAX(depth), SUM(images != '[]')
		FROM dataset_rows WHERE run_id = ?
		GROUP BY link_id ORDER BY MIN(seq)`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ThreadSummary
	for rows.Next() {
		var s ThreadSummary
		if err := rows.Scan(&s.LinkID, &s.RootText, &s.Rows, &s.MaxDepth, &s.Images); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ThreadRows returns the rows of one tree in pre-order.
func (d *DB) ThreadRows(runID, linkID string) ([]thread.Row, error) {
	return d.queryRows(`SELECT id, link_id, parent_id, depth, text, label, context, images
		FROM dataset_rows WHERE run_id = ? AND link_id = ? ORDER BY seq`, runID, linkID)
}

// RunRows returns every row of a run in export order.
func (d *DB) RunRows(runID string) ([]thread.Row, error) {
	return d.queryRows(`SELECT id, link_id, parent_id, depth, text, label, context, images
		FROM dataset_rows WHERE run_id = ? ORDER BY seq`, runID)
}

func (d *DB) queryRows(q string, args ...any) ([]thread.Row, error) {
	rows, err := d.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []thread.Row
	for rows.Next() {
		var r thread.Row
		var parent, text, label sql.NullString
		var ctxJSON, imgJSON string
		if err := rows.Scan(&r.ID, &r.LinkID, &parent, &r.Depth, &text, &label, &ctxJSON, &imgJSON); err != nil {
			return nil, err
		}
		r.ParentID = parent.String
		r.Text = text.String
		r.Label = label.String
		if err := json.Unmarshal([]byte(ctxJSON), &r.Context); err != nil {
			return nil, fmt.Errorf("decoding context of %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(imgJSON), &r.Images); err != nil {
			return nil, fmt.Errorf("decoding images of %s: %w", r.ID, err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
