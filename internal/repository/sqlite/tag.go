package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snippet-vault/internal/model"
	"github.com/sakif/snippet-vault/internal/repository"
)

// compile-time check that *DB implements repository.TagRepository
var _ repository.TagRepository = (*DB)(nil)

// GetOrCreateByTitle returns the tag with exactly this title (case-sensitive),
// inserting it first if absent.
//
// The insert uses ON CONFLICT(title) DO NOTHING, so when two requests race on
// the same new title one insert wins and the other is absorbed; the follow-up
// select then reads whichever row won. This closes the read-then-write race
// without any locking.
func (db *DB) GetOrCreateByTitle(ctx context.Context, title string) (*model.Tag, error) {
	now := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, title, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(title) DO NOTHING`,
		xid.New().String(),
		title,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting tag %q: %w", title, err)
	}

	var tag model.Tag
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, title, created_at, updated_at FROM tags WHERE title = ?`,
		title,
	).Scan(&tag.ID, &tag.Title, &tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		// Not even sql.ErrNoRows is expected here — the row was just
		// inserted or already present.
		return nil, fmt.Errorf("sqlite: reading back tag %q: %w", title, err)
	}

	return &tag, nil
}

// ListAll returns every known tag, oldest first.
func (db *DB) ListAll(ctx context.Context) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, created_at, updated_at FROM tags ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Title, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	return tags, nil
}

// scanTags reads tag rows from a prepared query result shared by snippet
// loading code in snippet.go.
func scanTags(rows *sql.Rows) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, 4)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Title, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}
