// volume_repository.go defines the Volume model and repository. Volume names
// are unique per journal through the normalized volume_key column: the
// (journal_id, volume_key) unique index is the backstop for creates that
// race past the service-level pre-check.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Volume belongs to exactly one journal. VolumeKey is the trimmed,
// casefolded form of VolumeName used for uniqueness within the journal.
type Volume struct {
	ID         uint64
	JournalID  uint64
	VolumeName string
	VolumeKey  string
	Status     bool
	Deleted    bool
	CreatedBy  uint64
	UpdatedBy  sql.NullInt64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ErrVolumeNotFound is returned when a volume cannot be found.
var ErrVolumeNotFound = errors.New("volume not found")

type VolumeRepo struct {
	db *sql.DB
}

func NewVolumeRepo(db *sql.DB) *VolumeRepo { return &VolumeRepo{db: db} }

const volumeColumns = `id, journal_id, volume_name, volume_key, status,
	is_deleted, created_by, updated_by, created_at, updated_at`

// Create inserts a volume. A duplicate (journal_id, volume_key) pair is
// reported as ErrDuplicate whether caught here or by the unique index.
func (r *VolumeRepo) Create(ctx context.Context, v *Volume) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO volumes (journal_id, volume_name, volume_key, created_by)
		 VALUES (?,?,?,?)`,
		v.JournalID, v.VolumeName, v.VolumeKey, v.CreatedBy)
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
	v.ID = uint64(id)
	return nil
}

// ExistsByKey reports whether a volume with the normalized key already
// exists under the journal, deleted or not — a soft-deleted volume still
// owns its name.
func (r *VolumeRepo) ExistsByKey(ctx context.Context, journalID uint64, key string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM volumes WHERE journal_id=? AND volume_key=?",
		journalID, key).Scan(&n)
	return n > 0, err
}

// GetByID fetches a volume by id.
func (r *VolumeRepo) GetByID(ctx context.Context, id uint64) (*Volume, error) {
	var v Volume
	err := r.db.QueryRowContext(ctx,
		`SELECT `+volumeColumns+` FROM volumes WHERE id=?`, id).
		Scan(&v.ID, &v.JournalID, &v.VolumeName, &v.VolumeKey, &v.Status,
			&v.Deleted, &v.CreatedBy, &v.UpdatedBy, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVolumeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns a page of visible volumes with optional name search.
func (r *VolumeRepo) List(ctx context.Context, search string, offset, limit int) ([]Volume, int, error) {
	where := "is_deleted=0"
	args := []interface{}{}
	if s := strings.TrimSpace(search); s != "" {
		where += " AND volume_name LIKE ?"
		args = append(args, "%"+s+"%")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM volumes WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+volumeColumns+` FROM volumes WHERE `+where+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := collectVolumes(rows)
	return out, total, err
}

// ListByJournal returns the visible volumes under a journal. This queries
// the volume's own journal_id, not the journal_volumes index.
func (r *VolumeRepo) ListByJournal(ctx context.Context, journalID uint64) ([]Volume, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+volumeColumns+` FROM volumes
		 WHERE journal_id=? AND is_deleted=0 ORDER BY created_at DESC`, journalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVolumes(rows)
}

func collectVolumes(rows *sql.Rows) ([]Volume, error) {
	var out []Volume
	for rows.Next() {
		var v Volume
		if err := rows.Scan(&v.ID, &v.JournalID, &v.VolumeName, &v.VolumeKey,
			&v.Status, &v.Deleted, &v.CreatedBy, &v.UpdatedBy, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpdateName renames a volume, keeping volume_key in step. The unique index
// still applies, so a rename onto a sibling's name surfaces as ErrDuplicate.
func (r *VolumeRepo) UpdateName(ctx context.Context, id uint64, name, key string, updatedBy uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE volumes SET volume_name=?, volume_key=?, updated_by=?,
		   updated_at=CURRENT_TIMESTAMP
		 WHERE id=? AND is_deleted=0`,
		name, key, updatedBy, id)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVolumeNotFound
	}
	return nil
}

// SetDeleted flips this volume's flag only. Deleting a volume never
// cascades to its issues or articles; subtree hiding is a journal-level
// operation.
func (r *VolumeRepo) SetDeleted(ctx context.Context, id uint64, deleted bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE volumes SET is_deleted=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", deleted, id)
	return err
}

// SetDeletedByJournal flips the flag on every volume of the journal. Used
// only by the journal cascade; idempotent by construction.
func (r *VolumeRepo) SetDeletedByJournal(ctx context.Context, journalID uint64, deleted bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE volumes SET is_deleted=?, updated_at=CURRENT_TIMESTAMP WHERE journal_id=?",
		deleted, journalID)
	return err
}

// CountActive returns the number of visible volumes.
func (r *VolumeRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM volumes WHERE is_deleted=0").Scan(&n)
	return n, err
}
