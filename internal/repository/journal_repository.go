// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Journal model and its repository. A Journal is the
// root of the content tree: volumes, issues and articles all carry its id as
// a foreign key, and that foreign key — never the journal_volumes index — is
// the authoritative parent/child relation.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Journal represents a journal persisted in the database.
type Journal struct {
	ID         uint64
	Title      string
	SubTitle   string
	Content    sql.NullString
	CoverImage sql.NullString
	ISSN       sql.NullString
	Status     bool
	Deleted    bool
	CreatedBy  uint64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ErrJournalNotFound is returned when a journal cannot be found.
var ErrJournalNotFound = errors.New("journal not found")

type JournalRepo struct {
	db *sql.DB
}

func NewJournalRepo(db *sql.DB) *JournalRepo { return &JournalRepo{db: db} }

const journalColumns = `id, title, sub_title, content, cover_image, issn,
	status, is_deleted, created_by, created_at, updated_at`

// Create inserts a journal and populates its ID.
func (r *JournalRepo) Create(ctx context.Context, j *Journal) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO journals (title, sub_title, content, cover_image, issn, created_by)
		 VALUES (?,?,?,?,?,?)`,
		j.Title, j.SubTitle, j.Content, j.CoverImage, j.ISSN, j.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	j.ID = uint64(id)
	return nil
}

// ExistsByTitle reports whether a non-deleted journal with this title exists,
// compared case-insensitively.
func (r *JournalRepo) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM journals WHERE LOWER(title)=LOWER(?) AND is_deleted=0",
		strings.TrimSpace(title)).Scan(&n)
	return n > 0, err
}

// GetByID fetches a journal by id regardless of its deleted flag; callers
// that only want visible journals check Deleted themselves.
func (r *JournalRepo) GetByID(ctx context.Context, id uint64) (*Journal, error) {
	var j Journal
	err := r.db.QueryRowContext(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE id=?`, id).
		Scan(&j.ID, &j.Title, &j.SubTitle, &j.Content, &j.CoverImage, &j.ISSN,
			&j.Status, &j.Deleted, &j.CreatedBy, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJournalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// List returns a page of visible journals filtered by an optional search
// term matched against title and content.
func (r *JournalRepo) List(ctx context.Context, search string, offset, limit int) ([]Journal, int, error) {
	where := "is_deleted=0"
	args := []interface{}{}
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + s + "%"
		where += " AND (title LIKE ? OR content LIKE ?)"
		args = append(args, like, like)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM journals WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE `+where+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := collectJournals(rows)
	return out, total, err
}

// ListAll returns every visible journal, newest first.
func (r *JournalRepo) ListAll(ctx context.Context) ([]Journal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE is_deleted=0 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJournals(rows)
}

// ListDeleted returns soft-deleted journals for the admin restore view.
func (r *JournalRepo) ListDeleted(ctx context.Context) ([]Journal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE is_deleted=1 ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJournals(rows)
}

func collectJournals(rows *sql.Rows) ([]Journal, error) {
	var out []Journal
	for rows.Next() {
		var j Journal
		if err := rows.Scan(&j.ID, &j.Title, &j.SubTitle, &j.Content, &j.CoverImage,
			&j.ISSN, &j.Status, &j.Deleted, &j.CreatedBy, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Update patches title, sub title, content and cover image. Empty strings
// leave the stored value untouched.
func (r *JournalRepo) Update(ctx context.Context, id uint64, title, subTitle, content, coverImage string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE journals SET
		   title       = COALESCE(NULLIF(?, ''), title),
		   sub_title   = COALESCE(NULLIF(?, ''), sub_title),
		   content     = COALESCE(NULLIF(?, ''), content),
		   cover_image = COALESCE(NULLIF(?, ''), cover_image),
		   updated_at  = CURRENT_TIMESTAMP
		 WHERE id=?`,
		title, subTitle, content, coverImage, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrJournalNotFound
	}
	return nil
}

// SetDeleted flips only the journal's own flag. Re-flipping an already
// flipped flag affects zero rows and is still a success: cascades must be
// safely re-appliable.
func (r *JournalRepo) SetDeleted(ctx context.Context, id uint64, deleted bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE journals SET is_deleted=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", deleted, id)
	return err
}

// AppendVolume records a volume id in the journal_volumes listing index.
// The index is denormalized convenience only; existence checks always go
// through the volume's own journal_id.
func (r *JournalRepo) AppendVolume(ctx context.Context, journalID, volumeID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO journal_volumes (journal_id, volume_id) VALUES (?,?)",
		journalID, volumeID)
	return err
}

// ReplaceEditors rewrites the journal's editor set.
func (r *JournalRepo) ReplaceEditors(ctx context.Context, journalID uint64, editorIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	if _, err = tx.ExecContext(ctx,
		"DELETE FROM journal_editors WHERE journal_id=?", journalID); err != nil {
		return err
	}
	for _, eid := range editorIDs {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO journal_editors (journal_id, editor_id) VALUES (?,?)",
			journalID, eid); err != nil {
			return err
		}
	}
	return nil
}

// EditorIDs returns the ids of the journal's editors.
func (r *JournalRepo) EditorIDs(ctx context.Context, journalID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT editor_id FROM journal_editors WHERE journal_id=?", journalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// CountActive returns the number of visible journals for dashboard stats.
func (r *JournalRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM journals WHERE is_deleted=0").Scan(&n)
	return n, err
}
