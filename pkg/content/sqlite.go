package content

import (
	"context"
	"database/sql"
	"slices"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteArchive stores tweets in a local SQLite database.
type SQLiteArchive struct {
	db *sql.DB
}

// OpenSQLiteArchive opens (or creates) the database at path.
func OpenSQLiteArchive(path string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	a, err := NewSQLiteArchive(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// NewSQLiteArchive initializes the schema in db. The caller must have
// registered a SQLite driver.
func NewSQLiteArchive(db *sql.DB) (*SQLiteArchive, error) {
	a := &SQLiteArchive{db: db}
	if err := a.initSchema(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *SQLiteArchive) initSchema() error {
	_, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS tweets (
			id TEXT PRIMARY KEY,
			author TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS tweets_created_at ON tweets (created_at);`,
	)
	return err
}

// Store inserts or replaces t.
func (a *SQLiteArchive) Store(ctx context.Context, t Tweet) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO tweets (id, author, text, created_at)
		VALUES (?, ?, ?, ?)`,
		t.ID, t.Author, t.Text, t.CreatedAt.UnixNano(),
	)
	return err
}

// Recent returns up to limit tweets, oldest first.
func (a *SQLiteArchive) Recent(ctx context.Context, limit int) ([]Tweet, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, author, text, created_at FROM tweets
		ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tweets []Tweet
	for rows.Next() {
		var (
			t  Tweet
			ns int64
		)
		if err := rows.Scan(&t.ID, &t.Author, &t.Text, &ns); err != nil {
			return nil, err
		}
		t.CreatedAt = time.Unix(0, ns).UTC()
		tweets = append(tweets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(tweets)
	return tweets, nil
}

// Close closes the database.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

var _ Archive = (*SQLiteArchive)(nil)
