// editor_repository.go manages editorial board members. Editors are shared
// across journals through the journal_editors join table; deleting an
// editor hides only their own record.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type Editor struct {
	ID          uint64
	FirstName   string
	LastName    string
	Email       string
	Designation sql.NullString
	Department  sql.NullString
	University  sql.NullString
	Address     sql.NullString
	CoverImage  sql.NullString
	Status      bool
	Deleted     bool
	CreatedBy   uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ErrEditorNotFound is returned when an editor cannot be found.
var ErrEditorNotFound = errors.New("editor not found")

type EditorRepo struct {
	db *sql.DB
}

func NewEditorRepo(db *sql.DB) *EditorRepo { return &EditorRepo{db: db} }

const editorColumns = `id, first_name, last_name, email, designation,
	department, university, address, cover_image, status, is_deleted,
	created_by, created_at, updated_at`

// Create inserts an editor; email carries a unique index.
func (r *EditorRepo) Create(ctx context.Context, e *Editor) error {
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO editors (first_name, last_name, email, designation,
		   department, university, address, cover_image, created_by)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		e.FirstName, e.LastName, e.Email, e.Designation, e.Department,
		e.University, e.Address, e.CoverImage, e.CreatedBy)
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
	e.ID = uint64(id)
	return nil
}

// ExistsByEmail reports whether a non-deleted editor owns the email.
func (r *EditorRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM editors WHERE email=? AND is_deleted=0",
		strings.ToLower(strings.TrimSpace(email))).Scan(&n)
	return n > 0, err
}

func (r *EditorRepo) GetByID(ctx context.Context, id uint64) (*Editor, error) {
	var e Editor
	err := r.db.QueryRowContext(ctx,
		`SELECT `+editorColumns+` FROM editors WHERE id=?`, id).
		Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Designation,
			&e.Department, &e.University, &e.Address, &e.CoverImage, &e.Status,
			&e.Deleted, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEditorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns a page of visible editors matched against name, email and
// affiliation fields.
func (r *EditorRepo) List(ctx context.Context, search string, offset, limit int) ([]Editor, int, error) {
	where := "is_deleted=0"
	args := []interface{}{}
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + s + "%"
		where += ` AND (first_name LIKE ? OR last_name LIKE ? OR email LIKE ?
			OR designation LIKE ? OR department LIKE ? OR university LIKE ?)`
		args = append(args, like, like, like, like, like, like)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM editors WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+editorColumns+` FROM editors WHERE `+where+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Editor
	for rows.Next() {
		var e Editor
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email,
			&e.Designation, &e.Department, &e.University, &e.Address, &e.CoverImage,
			&e.Status, &e.Deleted, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// ListByIDs fetches editors by id set, preserving only visible records.
func (r *EditorRepo) ListByIDs(ctx context.Context, ids []uint64) ([]Editor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+editorColumns+` FROM editors WHERE id IN (`+placeholders+`) AND is_deleted=0`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Editor
	for rows.Next() {
		var e Editor
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email,
			&e.Designation, &e.Department, &e.University, &e.Address, &e.CoverImage,
			&e.Status, &e.Deleted, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EditorRepo) Update(ctx context.Context, id uint64, firstName, lastName, designation, department, university, address string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE editors SET
		   first_name  = COALESCE(NULLIF(?, ''), first_name),
		   last_name   = COALESCE(NULLIF(?, ''), last_name),
		   designation = COALESCE(NULLIF(?, ''), designation),
		   department  = COALESCE(NULLIF(?, ''), department),
		   university  = COALESCE(NULLIF(?, ''), university),
		   address     = COALESCE(NULLIF(?, ''), address),
		   updated_at  = CURRENT_TIMESTAMP
		 WHERE id=? AND is_deleted=0`,
		firstName, lastName, designation, department, university, address, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEditorNotFound
	}
	return nil
}

// SetDeleted flips this editor's flag only.
func (r *EditorRepo) SetDeleted(ctx context.Context, id uint64, deleted bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE editors SET is_deleted=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", deleted, id)
	return err
}

// CountActive returns the number of visible editors.
func (r *EditorRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM editors WHERE is_deleted=0").Scan(&n)
	return n, err
}
