// submission_repository.go stores author manuscript submissions. Uploaded
// manuscript files live in external storage; only their paths are kept
// here, serialized as a JSON array in the files column.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type Submission struct {
	ID           uint64
	JournalID    uint64
	Name         string
	Email        string
	Country      string
	ArticleTitle string
	ArticleType  string
	Abstract     string
	Files        sql.NullString // JSON array of {fileName, fileUrl, fileType, fileSize}
	Status       string
	Deleted      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ErrSubmissionNotFound is returned when a submission cannot be found.
var ErrSubmissionNotFound = errors.New("submission not found")

type SubmissionRepo struct {
	db *sql.DB
}

func NewSubmissionRepo(db *sql.DB) *SubmissionRepo { return &SubmissionRepo{db: db} }

const submissionColumns = `id, journal_id, name, email, country,
	article_title, article_type, abstract, files, status, is_deleted,
	created_at, updated_at`

func (r *SubmissionRepo) Create(ctx context.Context, s *Submission) error {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	if s.Status == "" {
		s.Status = "Pending"
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO submissions (journal_id, name, email, country,
		   article_title, article_type, abstract, files, status)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		s.JournalID, s.Name, s.Email, s.Country, s.ArticleTitle, s.ArticleType,
		s.Abstract, s.Files, s.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

func (r *SubmissionRepo) GetByID(ctx context.Context, id uint64) (*Submission, error) {
	var s Submission
	err := r.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id=?`, id).
		Scan(&s.ID, &s.JournalID, &s.Name, &s.Email, &s.Country, &s.ArticleTitle,
			&s.ArticleType, &s.Abstract, &s.Files, &s.Status, &s.Deleted,
			&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns a page of visible submissions searched over author name,
// email and article title.
func (r *SubmissionRepo) List(ctx context.Context, search string, offset, limit int) ([]Submission, int, error) {
	where := "is_deleted=0"
	args := []interface{}{}
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + s + "%"
		where += " AND (name LIKE ? OR email LIKE ? OR article_title LIKE ?)"
		args = append(args, like, like, like)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM submissions WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE `+where+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.ID, &s.JournalID, &s.Name, &s.Email, &s.Country,
			&s.ArticleTitle, &s.ArticleType, &s.Abstract, &s.Files, &s.Status,
			&s.Deleted, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// UpdateStatus moves a submission through the review pipeline.
func (r *SubmissionRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE submissions SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=? AND is_deleted=0",
		status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// SetDeleted flips this submission's flag only.
func (r *SubmissionRepo) SetDeleted(ctx context.Context, id uint64, deleted bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE submissions SET is_deleted=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", deleted, id)
	return err
}

// CountActive returns the number of visible submissions.
func (r *SubmissionRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM submissions WHERE is_deleted=0").Scan(&n)
	return n, err
}
