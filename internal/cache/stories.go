package cache

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/fragmede/threadprep/internal/api"
)

// PutStory records that a story's comments were fetched.
func (d *DB) PutStory(story *api.Item, topic string, commentCount int) error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO stories
		(id, title, url, by_user, time_unix, comment_count, topic, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		strconv.Itoa(story.ID), nullStr(story.Title), nullStr(story.URL), nullStr(story.By),
		story.Time, commentCount, nullStr(topic), time.Now().Unix())
	return err
}

// StoryFresh reports whether a story's comments were fetched within ttl.
func (d *DB) StoryFresh(storyID int, ttl time.Duration) (bool, error) {
	var fetchedAt int64
	err := d.db.QueryRow(`SELECT fetched_at FROM stories WHERE id = ?`, strconv.Itoa(storyID)).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return time.Since(time.Unix(fetchedAt, 0)) < ttl, nil
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
