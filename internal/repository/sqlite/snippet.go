package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snippet-vault/internal/apperror"
	"github.com/sakif/snippet-vault/internal/model"
	"github.com/sakif/snippet-vault/internal/repository"
)

// compile-time check that *DB implements repository.SnippetRepository
var _ repository.SnippetRepository = (*DB)(nil)

const snippetSelect = `
	SELECT s.id, s.title, s.content, s.user_id, u.username, s.created_at, s.updated_at
	FROM snippets s
	JOIN users u ON u.id = s.user_id`

// Create inserts a snippet and its tag associations in one transaction.
// The snippet's Tags must already be resolved (each tag has an ID).
// On return the snippet carries its generated ID and timestamps.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet) error {
	now := time.Now()
	snippet.ID = xid.New().String()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snippets (id, title, content, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.Title,
		snippet.Content,
		snippet.UserID,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting snippet: %w", err)
	}

	if err := insertAssociations(ctx, tx, snippet.ID, snippet.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing snippet insert: %w", err)
	}

	return nil
}

// GetByID retrieves a single snippet with its owner's username and tags.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	var s model.Snippet
	err := db.conn.QueryRowContext(ctx, snippetSelect+` WHERE s.id = ?`, id).Scan(
		&s.ID,
		&s.Title,
		&s.Content,
		&s.UserID,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	tags, err := db.loadTags(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Tags = tags

	return &s, nil
}

// List retrieves snippets with limit/offset pagination, newest first.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	return db.listSnippets(ctx,
		snippetSelect+` ORDER BY s.created_at DESC, s.id LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
}

// Count returns the total number of snippets.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM snippets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting snippets: %w", err)
	}
	return n, nil
}

// ListByTagTitle retrieves snippets carrying a tag whose title matches
// case-insensitively, newest first. Filtering is case-insensitive even though
// tag resolution is exact-match.
func (db *DB) ListByTagTitle(ctx context.Context, title string, opts repository.ListOptions) ([]model.Snippet, error) {
	return db.listSnippets(ctx,
		snippetSelect+`
		 JOIN snippet_tags st ON st.snippet_id = s.id
		 JOIN tags t ON t.id = st.tag_id
		 WHERE t.title = ? COLLATE NOCASE
		 ORDER BY s.created_at DESC, s.id LIMIT ? OFFSET ?`,
		title, opts.Limit, opts.Offset,
	)
}

// CountByTagTitle counts snippets matching a tag title, case-insensitively.
func (db *DB) CountByTagTitle(ctx context.Context, title string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM snippets s
		 JOIN snippet_tags st ON st.snippet_id = s.id
		 JOIN tags t ON t.id = st.tag_id
		 WHERE t.title = ? COLLATE NOCASE`,
		title,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting snippets by tag %q: %w", title, err)
	}
	return n, nil
}

// Update rewrites the snippet's mutable columns and fully replaces its tag
// associations in one transaction. Returns apperror.ErrNotFound when the id
// does not resolve. user_id and created_at are never touched.
func (db *DB) Update(ctx context.Context, snippet *model.Snippet) error {
	snippet.UpdatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE snippets SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		snippet.Title,
		snippet.Content,
		snippet.UpdatedAt,
		snippet.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", snippet.ID)
	}

	// Replace-not-merge: drop the old association rows, insert the new set.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snippet_tags WHERE snippet_id = ?`, snippet.ID,
	); err != nil {
		return fmt.Errorf("sqlite: clearing snippet %s tags: %w", snippet.ID, err)
	}
	if err := insertAssociations(ctx, tx, snippet.ID, snippet.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing snippet update: %w", err)
	}

	return nil
}

// Delete removes a snippet; its association rows go with it via ON DELETE
// CASCADE. Tags themselves are never deleted.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}

	return nil
}

func (db *DB) listSnippets(ctx context.Context, query string, args ...any) ([]model.Snippet, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	snippets := make([]model.Snippet, 0, 20)
	for rows.Next() {
		var s model.Snippet
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Content, &s.UserID, &s.CreatedBy,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	for i := range snippets {
		tags, err := db.loadTags(ctx, snippets[i].ID)
		if err != nil {
			return nil, err
		}
		snippets[i].Tags = tags
	}

	return snippets, nil
}

// loadTags returns a snippet's tags in association insertion order, which is
// the order the titles were submitted in.
func (db *DB) loadTags(ctx context.Context, snippetID string) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT t.id, t.title, t.created_at, t.updated_at
		 FROM tags t
		 JOIN snippet_tags st ON st.tag_id = t.id
		 WHERE st.snippet_id = ?
		 ORDER BY st.rowid`,
		snippetID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading snippet %s tags: %w", snippetID, err)
	}
	defer rows.Close()

	tags, err := scanTags(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return tags, nil
}

func insertAssociations(ctx context.Context, tx *sql.Tx, snippetID string, tags []model.Tag) error {
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snippet_tags (snippet_id, tag_id) VALUES (?, ?)`,
			snippetID, tag.ID,
		); err != nil {
			return fmt.Errorf("sqlite: associating tag %s with snippet %s: %w", tag.ID, snippetID, err)
		}
	}
	return nil
}
