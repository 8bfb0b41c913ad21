package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// User mirrors the 'users' table. A user may authenticate only while
// approved, active and not soft-deleted. ActiveToken holds the single
// session token currently recognized for this user; any other token,
// even a cryptographically valid one, is rejected as superseded.
type User struct {
	ID           uint64
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
	Address      sql.NullString
	ProfileImage sql.NullString
	Active       bool
	Approved     bool
	Deleted      bool
	ActiveToken  sql.NullString
	DeviceID     sql.NullString
	DeviceModel  sql.NullString
	AppVersion   sql.NullString
	DeviceToken  sql.NullString
	PlayerID     sql.NullString
	LastLogin    sql.NullTime
	CreatedBy    sql.NullInt64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DeviceMeta carries the per-device headers recorded at login so that a
// later logout can be scoped to the same device.
type DeviceMeta struct {
	DeviceID    string
	DeviceModel string
	AppVersion  string
	DeviceToken string
	PlayerID    string
}

// ErrUserNotFound is returned when no matching user row exists.
var ErrUserNotFound = errors.New("user not found")

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, first_name, last_name, email, phone, password_hash, role,
	address, profile_image, is_active, approved, is_deleted, active_token,
	device_id, device_model, app_version, device_token, player_id,
	last_login, created_by, created_at, updated_at`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone,
		&u.PasswordHash, &u.Role, &u.Address, &u.ProfileImage, &u.Active,
		&u.Approved, &u.Deleted, &u.ActiveToken, &u.DeviceID, &u.DeviceModel,
		&u.AppVersion, &u.DeviceToken, &u.PlayerID, &u.LastLogin, &u.CreatedBy,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

// Create inserts a user and returns its ID. Email and phone carry unique
// indexes; violations surface as ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *User) (uint64, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, phone, password_hash,
		   role, address, is_active, approved, created_by)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		u.FirstName, u.LastName, u.Email, u.Phone, u.PasswordHash,
		u.Role, u.Address, u.Active, u.Approved, u.CreatedBy)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID = uint64(id)
	return u.ID, nil
}

// GetByEmail fetches a non-deleted user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email=? AND is_deleted=0 LIMIT 1`, email))
}

// GetByPhone fetches a non-deleted user by phone.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone=? AND is_deleted=0 LIMIT 1`, phone))
}

// GetByID fetches a user by id regardless of flags; callers decide which
// flags matter for their operation.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id))
}

// List returns a page of non-deleted users, optionally filtered by a search
// term matched against name, email, phone and address.
func (r *UserRepo) List(ctx context.Context, search string, offset, limit int) ([]User, int, error) {
	where := "is_deleted=0"
	args := []interface{}{}
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + s + "%"
		where += ` AND (first_name LIKE ? OR last_name LIKE ? OR email LIKE ?
			OR phone LIKE ? OR address LIKE ?)`
		args = append(args, like, like, like, like, like)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + userColumns + ` FROM users WHERE ` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.DB.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone,
			&u.PasswordHash, &u.Role, &u.Address, &u.ProfileImage, &u.Active,
			&u.Approved, &u.Deleted, &u.ActiveToken, &u.DeviceID, &u.DeviceModel,
			&u.AppVersion, &u.DeviceToken, &u.PlayerID, &u.LastLogin, &u.CreatedBy,
			&u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// ListPending returns users awaiting admin approval.
func (r *UserRepo) ListPending(ctx context.Context) ([]User, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE approved=0 AND is_deleted=0 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone,
			&u.PasswordHash, &u.Role, &u.Address, &u.ProfileImage, &u.Active,
			&u.Approved, &u.Deleted, &u.ActiveToken, &u.DeviceID, &u.DeviceModel,
			&u.AppVersion, &u.DeviceToken, &u.PlayerID, &u.LastLogin, &u.CreatedBy,
			&u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateProfile patches the mutable profile fields. Empty strings leave the
// current value untouched.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, firstName, lastName, address string, updatedBy uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET
		   first_name = COALESCE(NULLIF(?, ''), first_name),
		   last_name  = COALESCE(NULLIF(?, ''), last_name),
		   address    = COALESCE(NULLIF(?, ''), address),
		   updated_at = CURRENT_TIMESTAMP
		 WHERE id=?`,
		firstName, lastName, address, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// BindSession overwrites the user's active session token and device markers
// and stamps last_login. Last writer wins: two near-simultaneous logins both
// succeed and the chronologically last token is the one that survives.
func (r *UserRepo) BindSession(ctx context.Context, id uint64, token string, dev DeviceMeta, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET active_token=?,
		   device_id    = COALESCE(NULLIF(?, ''), device_id),
		   device_model = COALESCE(NULLIF(?, ''), device_model),
		   app_version  = COALESCE(NULLIF(?, ''), app_version),
		   device_token = COALESCE(NULLIF(?, ''), device_token),
		   player_id    = COALESCE(NULLIF(?, ''), player_id),
		   last_login=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=?`,
		token, dev.DeviceID, dev.DeviceModel, dev.AppVersion, dev.DeviceToken, dev.PlayerID, at, id)
	return err
}

// ClearSessionForDevice drops the bound token and device markers, but only
// when deviceID matches the recorded device. A stale or foreign device id
// affects zero rows, which callers treat as a harmless no-op.
func (r *UserRepo) ClearSessionForDevice(ctx context.Context, id uint64, deviceID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET active_token=NULL, device_id=NULL, device_token=NULL,
		   player_id=NULL, updated_at=CURRENT_TIMESTAMP
		 WHERE id=? AND device_id=?`, id, deviceID)
	return err
}

// UpdatePassword replaces the stored hash for the user owning the phone.
func (r *UserRepo) UpdatePassword(ctx context.Context, phone, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=CURRENT_TIMESTAMP WHERE phone=? AND is_deleted=0",
		hash, phone)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetActive flips the deactivation flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetApproved marks a user as approved by an admin.
func (r *UserRepo) SetApproved(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET approved=1, updated_at=CURRENT_TIMESTAMP WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SoftDelete hides the user. The row is kept for audit attribution.
func (r *UserRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_deleted=1, updated_at=CURRENT_TIMESTAMP WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetProfileImage stores the uploaded image path.
func (r *UserRepo) SetProfileImage(ctx context.Context, id uint64, path string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET profile_image=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", path, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
