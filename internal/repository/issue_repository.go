// issue_repository.go defines the Issue model and repository. An issue is
// owned by a volume but also carries its journal id directly, so it stays
// attributable to the journal even if the volume is later detached. The
// (issue_name, volume_id, journal_id) unique index backs the sibling
// uniqueness rule.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type Issue struct {
	ID        uint64
	JournalID uint64
	VolumeID  uint64
	IssueName string
	Status    bool
	Deleted   bool
	CreatedBy uint64
	UpdatedBy sql.NullInt64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ErrIssueNotFound is returned when an issue cannot be found.
var ErrIssueNotFound = errors.New("issue not found")

type IssueRepo struct {
	db *sql.DB
}

func NewIssueRepo(db *sql.DB) *IssueRepo { return &IssueRepo{db: db} }

const issueColumns = `id, journal_id, volume_id, issue_name, status,
	is_deleted, created_by, updated_by, created_at, updated_at`

// Create inserts an issue; duplicate siblings surface as ErrDuplicate.
func (r *IssueRepo) Create(ctx context.Context, i *Issue) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO issues (journal_id, volume_id, issue_name, created_by)
		 VALUES (?,?,?,?)`,
		i.JournalID, i.VolumeID, i.IssueName, i.CreatedBy)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	i.ID = uint64(id)
	return nil
}

// Exists reports whether an issue with this exact name already exists under
// the (volume, journal) pair.
func (r *IssueRepo) Exists(ctx context.Context, name string, volumeID, journalID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM issues WHERE issue_name=? AND volume_id=? AND journal_id=?",
		name, volumeID, journalID).Scan(&n)
	return n > 0, err
}

// GetByID fetches an issue by id.
func (r *IssueRepo) GetByID(ctx context.Context, id uint64) (*Issue, error) {
	var i Issue
	err := r.db.QueryRowContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE id=?`, id).
		Scan(&i.ID, &i.JournalID, &i.VolumeID, &i.IssueName, &i.Status,
			&i.Deleted, &i.CreatedBy, &i.UpdatedBy, &i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIssueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// List returns a page of visible issues, optionally filtered by a name
// search and/or a volume id.
func (r *IssueRepo) List(ctx context.Context, search string, volumeID uint64, offset, limit int) ([]Issue, int, error) {
	where := "is_deleted=0"
	args := []interface{}{}
	if volumeID != 0 {
		where += " AND volume_id=?"
		args = append(args, volumeID)
	}
	if s := strings.TrimSpace(search); s != "" {
		where += " AND issue_name LIKE ?"
		args = append(args, "%"+s+"%")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM issues WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE `+where+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := collectIssues(rows)
	return out, total, err
}

// ListByVolume returns the visible issues under a volume.
func (r *IssueRepo) ListByVolume(ctx context.Context, volumeID uint64) ([]Issue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+issueColumns+` FROM issues
		 WHERE volume_id=? AND is_deleted=0 ORDER BY created_at DESC`, volumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIssues(rows)
}

// ListByJournal returns the visible issues across all volumes of a journal.
func (r *IssueRepo) ListByJournal(ctx context.Context, journalID uint64) ([]Issue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+issueColumns+` FROM issues
		 WHERE journal_id=? AND is_deleted=0 ORDER BY created_at DESC`, journalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIssues(rows)
}

func collectIssues(rows *sql.Rows) ([]Issue, error) {
	var out []Issue
	for rows.Next() {
		var i Issue
		if err := rows.Scan(&i.ID, &i.JournalID, &i.VolumeID, &i.IssueName,
			&i.Status, &i.Deleted, &i.CreatedBy, &i.UpdatedBy, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// UpdateName renames an issue. The compound unique index still applies.
func (r *IssueRepo) UpdateName(ctx context.Context, id uint64, name string, updatedBy uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE issues SET issue_name=?, updated_by=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=? AND is_deleted=0`, name, updatedBy, id)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrIssueNotFound
	}
	return nil
}

// SetDeleted flips this issue's flag only.
func (r *IssueRepo) SetDeleted(ctx context.Context, id uint64, deleted bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE issues SET is_deleted=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", deleted, id)
	return err
}

// SetDeletedByJournal flips the flag on every issue of the journal. Used
// only by the journal cascade.
func (r *IssueRepo) SetDeletedByJournal(ctx context.Context, journalID uint64, deleted bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE issues SET is_deleted=?, updated_at=CURRENT_TIMESTAMP WHERE journal_id=?",
		deleted, journalID)
	return err
}

// CountActive returns the number of visible issues.
func (r *IssueRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM issues WHERE is_deleted=0").Scan(&n)
	return n, err
}
