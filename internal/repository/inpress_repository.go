// inpress_repository.go holds articles accepted but not yet assigned to an
// issue. They hang off journal and volume only; once an issue is chosen the
// piece is created as a regular article.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type InPressArticle struct {
	ID        uint64
	JournalID uint64
	VolumeID  uint64
	Title     string
	Author    string
	Content   string
	Document  sql.NullString
	Deleted   bool
	CreatedBy sql.NullInt64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ErrInPressNotFound is returned when an in-press article cannot be found.
var ErrInPressNotFound = errors.New("in-press article not found")

type InPressRepo struct {
	db *sql.DB
}

func NewInPressRepo(db *sql.DB) *InPressRepo { return &InPressRepo{db: db} }

const inPressColumns = `id, journal_id, volume_id, title, author, content,
	document, is_deleted, created_by, created_at, updated_at`

func (r *InPressRepo) Create(ctx context.Context, a *InPressArticle) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO inpress_articles (journal_id, volume_id, title, author,
		   content, document, created_by)
		 VALUES (?,?,?,?,?,?,?)`,
		a.JournalID, a.VolumeID, a.Title, a.Author, a.Content, a.Document, a.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

func (r *InPressRepo) GetByID(ctx context.Context, id uint64) (*InPressArticle, error) {
	var a InPressArticle
	err := r.db.QueryRowContext(ctx,
		`SELECT `+inPressColumns+` FROM inpress_articles WHERE id=?`, id).
		Scan(&a.ID, &a.JournalID, &a.VolumeID, &a.Title, &a.Author, &a.Content,
			&a.Document, &a.Deleted, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInPressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *InPressRepo) List(ctx context.Context, search string, offset, limit int) ([]InPressArticle, int, error) {
	where := "is_deleted=0"
	args := []interface{}{}
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + s + "%"
		where += " AND (title LIKE ? OR author LIKE ?)"
		args = append(args, like, like)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM inpress_articles WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inPressColumns+` FROM inpress_articles WHERE `+where+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []InPressArticle
	for rows.Next() {
		var a InPressArticle
		if err := rows.Scan(&a.ID, &a.JournalID, &a.VolumeID, &a.Title, &a.Author,
			&a.Content, &a.Document, &a.Deleted, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// ListByVolume returns the live in-press articles shelved under a volume.
func (r *InPressRepo) ListByVolume(ctx context.Context, volumeID uint64) ([]InPressArticle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inPressColumns+` FROM inpress_articles
		 WHERE volume_id=? AND is_deleted=0 ORDER BY created_at DESC`, volumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InPressArticle
	for rows.Next() {
		var a InPressArticle
		if err := rows.Scan(&a.ID, &a.JournalID, &a.VolumeID, &a.Title, &a.Author,
			&a.Content, &a.Document, &a.Deleted, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *InPressRepo) Update(ctx context.Context, id uint64, title, author, content, document string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE inpress_articles SET
		   title    = COALESCE(NULLIF(?, ''), title),
		   author   = COALESCE(NULLIF(?, ''), author),
		   content  = COALESCE(NULLIF(?, ''), content),
		   document = COALESCE(NULLIF(?, ''), document),
		   updated_at = CURRENT_TIMESTAMP
		 WHERE id=? AND is_deleted=0`,
		title, author, content, document, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInPressNotFound
	}
	return nil
}

// SetDeleted flips this record's flag only.
func (r *InPressRepo) SetDeleted(ctx context.Context, id uint64, deleted bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE inpress_articles SET is_deleted=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", deleted, id)
	return err
}

// SetDeletedByJournal flips the flag on every in-press article of the
// journal. Used only by the journal cascade.
func (r *InPressRepo) SetDeletedByJournal(ctx context.Context, journalID uint64, deleted bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE inpress_articles SET is_deleted=?, updated_at=CURRENT_TIMESTAMP WHERE journal_id=?",
		deleted, journalID)
	return err
}
