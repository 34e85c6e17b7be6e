package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fragmede/threadprep/internal/comment"
)

// PutComments stores the comments of one story, replacing earlier copies.
func (d *DB) PutComments(storyID string, recs []comment.Record) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO comments
		(id, story_id, parent_id, body, url, permalink, meta, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, r := range recs {
		meta, err := json.Marshal(r.Meta)
		if err != nil {
			return fmt.Errorf("encoding meta of %s: %w", r.ID, err)
		}
		if r.Meta == nil {
			meta = []byte("{}")
		}
		if _, err := stmt.Exec(r.ID, nullStr(storyID), nullStr(r.ParentID), r.Body,
			nullStr(r.URL), nullStr(r.Permalink), string(meta), now); err != nil {
			return fmt.Errorf("storing comment %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// LoadComments returns stored comments in insertion order with their
// labels attached. With labeledOnly, unlabeled comments are left out.
func (d *DB) LoadComments(labeledOnly bool) ([]comment.Record, error) {
	q := `SELECT c.id, c.parent_id, c.body, c.url, c.permalink, c.meta, l.label
		FROM comments c LEFT JOIN labels l ON l.comment_id = c.id`
	if labeledOnly {
		q += ` WHERE l.label IS NOT NULL`
	}
	q += ` ORDER BY c.rowid`
	return d.queryComments(q)
}

// UnlabeledComments returns up to limit comments that have no label yet.
// A limit of 0 means no limit.
func (d *DB) UnlabeledComments(limit int) ([]comment.Record, error) {
	if limit <= 0 {
		limit = -1
	}
	return d.queryComments(`SELECT c.id, c.parent_id, c.body, c.url, c.permalink, c.meta, NULL
		FROM comments c LEFT JOIN labels l ON l.comment_id = c.id
		WHERE l.comment_id IS NULL ORDER BY c.rowid LIMIT ?`, limit)
}

// CountComments returns the total and labeled comment counts.
func (d *DB) CountComments() (total, labeled int, err error) {
	err = d.db.QueryRow(`SELECT COUNT(*), COUNT(l.label)
		FROM comments c LEFT JOIN labels l ON l.comment_id = c.id`).Scan(&total, &labeled)
	return total, labeled, err
}

// PutLabel stores the classifier's label for a comment.
func (d *DB) PutLabel(commentID, label, model string) error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO labels (comment_id, label, model, labeled_at)
		VALUES (?, ?, ?, ?)`, commentID, label, nullStr(model), time.Now().Unix())
	return err
}

func (d *DB) queryComments(q string, args ...any) ([]comment.Record, error) {
	rows, err := d.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []comment.Record
	for rows.Next() {
		var r comment.Record
		var parent, url, permalink, label sql.NullString
		var meta string
		if err := rows.Scan(&r.ID, &parent, &r.Body, &url, &permalink, &meta, &label); err != nil {
			return nil, err
		}
		r.ParentID = parent.String
		r.URL = url.String
		r.Permalink = permalink.String
		r.Label = label.String
		if err := json.Unmarshal([]byte(meta), &r.Meta); err != nil {
			return nil, fmt.Errorf("decoding meta of %s: %w", r.ID, err)
		}
		if len(r.Meta) == 0 {
			r.Meta = nil
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}
