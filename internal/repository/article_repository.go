// article_repository.go defines published articles, the leaves of the
// content tree. Articles reference journal, volume and issue; views and
// downloads are bumped with atomic single-row updates.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type Article struct {
	ID           uint64
	JournalID    uint64
	VolumeID     uint64
	IssueID      uint64
	Title        string
	Author       string
	Content      string
	CoverImage   sql.NullString
	ArticleType  string
	ExternalLink sql.NullString
	Status       string
	PublishedAt  sql.NullTime
	Views        uint64
	Downloads    uint64
	Deleted      bool
	CreatedBy    sql.NullInt64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ErrArticleNotFound is returned when an article cannot be found.
var ErrArticleNotFound = errors.New("article not found")

type ArticleRepo struct {
	db *sql.DB
}

func NewArticleRepo(db *sql.DB) *ArticleRepo { return &ArticleRepo{db: db} }

const articleColumns = `id, journal_id, volume_id, issue_id, title, author,
	content, cover_image, article_type, external_link, status, published_at,
	views, downloads, is_deleted, created_by, created_at, updated_at`

// Create inserts an article. A "published" status stamps published_at.
func (r *ArticleRepo) Create(ctx context.Context, a *Article) error {
	if a.Status == "published" && !a.PublishedAt.Valid {
		a.PublishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO articles (journal_id, volume_id, issue_id, title, author,
		   content, cover_image, article_type, external_link, status,
		   published_at, created_by)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.JournalID, a.VolumeID, a.IssueID, a.Title, a.Author, a.Content,
		a.CoverImage, a.ArticleType, a.ExternalLink, a.Status, a.PublishedAt,
		a.CreatedBy)
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

// GetByID fetches an article by id.
func (r *ArticleRepo) GetByID(ctx context.Context, id uint64) (*Article, error) {
	var a Article
	err := r.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id=?`, id).
		Scan(&a.ID, &a.JournalID, &a.VolumeID, &a.IssueID, &a.Title, &a.Author,
			&a.Content, &a.CoverImage, &a.ArticleType, &a.ExternalLink, &a.Status,
			&a.PublishedAt, &a.Views, &a.Downloads, &a.Deleted, &a.CreatedBy,
			&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns a page of visible articles searched over title, author and
// article type.
func (r *ArticleRepo) List(ctx context.Context, search string, offset, limit int) ([]Article, int, error) {
	where := "is_deleted=0"
	args := []interface{}{}
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + s + "%"
		where += " AND (title LIKE ? OR author LIKE ? OR article_type LIKE ?)"
		args = append(args, like, like, like)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM articles WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE `+where+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := collectArticles(rows)
	return out, total, err
}

// ListByJournal returns the visible articles of a journal, newest first.
func (r *ArticleRepo) ListByJournal(ctx context.Context, journalID uint64) ([]Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE journal_id=? AND is_deleted=0 ORDER BY created_at DESC`, journalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectArticles(rows)
}

// ListByIssue returns the visible articles of an issue.
func (r *ArticleRepo) ListByIssue(ctx context.Context, issueID uint64) ([]Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE issue_id=? AND is_deleted=0 ORDER BY created_at DESC`, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectArticles(rows)
}

func collectArticles(rows *sql.Rows) ([]Article, error) {
	var out []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.JournalID, &a.VolumeID, &a.IssueID, &a.Title,
			&a.Author, &a.Content, &a.CoverImage, &a.ArticleType, &a.ExternalLink,
			&a.Status, &a.PublishedAt, &a.Views, &a.Downloads, &a.Deleted,
			&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update patches mutable article fields. A transition to "published" stamps
// published_at if it was never set.
func (r *ArticleRepo) Update(ctx context.Context, id uint64, title, author, content, articleType, externalLink, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE articles SET
		   title         = COALESCE(NULLIF(?, ''), title),
		   author        = COALESCE(NULLIF(?, ''), author),
		   content       = COALESCE(NULLIF(?, ''), content),
		   article_type  = COALESCE(NULLIF(?, ''), article_type),
		   external_link = COALESCE(NULLIF(?, ''), external_link),
		   status        = COALESCE(NULLIF(?, ''), status),
		   published_at  = CASE WHEN ?='published' AND published_at IS NULL
		                        THEN CURRENT_TIMESTAMP ELSE published_at END,
		   updated_at    = CURRENT_TIMESTAMP
		 WHERE id=? AND is_deleted=0`,
		title, author, content, articleType, externalLink, status, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// IncrementViews bumps the view counter atomically.
func (r *ArticleRepo) IncrementViews(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE articles SET views=views+1 WHERE id=? AND is_deleted=0", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// IncrementDownloads bumps the download counter atomically.
func (r *ArticleRepo) IncrementDownloads(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE articles SET downloads=downloads+1 WHERE id=? AND is_deleted=0", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// SetDeleted flips this article's flag only.
func (r *ArticleRepo) SetDeleted(ctx context.Context, id uint64, deleted bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE articles SET is_deleted=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", deleted, id)
	return err
}

// SetDeletedByJournal flips the flag on every article of the journal.
// Used only by the journal cascade.
func (r *ArticleRepo) SetDeletedByJournal(ctx context.Context, journalID uint64, deleted bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE articles SET is_deleted=?, updated_at=CURRENT_TIMESTAMP WHERE journal_id=?",
		deleted, journalID)
	return err
}

// CountActive returns the number of visible articles.
func (r *ArticleRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM articles WHERE is_deleted=0").Scan(&n)
	return n, err
}

// TotalEngagement sums views and downloads over visible articles for the
// dashboard.
func (r *ArticleRepo) TotalEngagement(ctx context.Context) (views, downloads uint64, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(views),0), COALESCE(SUM(downloads),0)
		 FROM articles WHERE is_deleted=0`).Scan(&views, &downloads)
	return views, downloads, err
}
