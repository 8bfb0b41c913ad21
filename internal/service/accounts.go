package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/queue"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/repository"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/utils"
)

// AccountStore is the management slice of the credential store: listing,
// approval, activation and profile maintenance.
type AccountStore interface {
	Create(ctx context.Context, u *repository.User) (uint64, error)
	GetByID(ctx context.Context, id uint64) (repository.User, error)
	List(ctx context.Context, search string, offset, limit int) ([]repository.User, int, error)
	ListPending(ctx context.Context) ([]repository.User, error)
	UpdateProfile(ctx context.Context, id uint64, firstName, lastName, address string, updatedBy uint64) error
	SetActive(ctx context.Context, id uint64, active bool) error
	SetApproved(ctx context.Context, id uint64) error
	SoftDelete(ctx context.Context, id uint64) error
	SetProfileImage(ctx context.Context, id uint64, path string) error
}

// NewAccountInput is the admin-side user creation payload. Accounts created
// this way skip the OTP flow entirely.
type NewAccountInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Role      string
}

// Accounts is the admin-facing account management service.
type Accounts struct {
	store      AccountStore
	audit      Recorder
	bcryptCost int
}

func NewAccounts(store AccountStore, rec Recorder, bcryptCost int) *Accounts {
	return &Accounts{store: store, audit: rec, bcryptCost: bcryptCost}
}

// Create provisions an account directly. The role defaults to "user" and
// the account starts approved and active.
func (s *Accounts) Create(ctx context.Context, in NewAccountInput, meta RequestMeta) (repository.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Email == "" || in.Phone == "" || in.Password == "" {
		return repository.User{}, fmt.Errorf("%w: email, phone and password are required", ErrInvalidInput)
	}
	if in.Role == "" {
		in.Role = "user"
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return repository.User{}, err
	}
	u := repository.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         in.Role,
		Active:       true,
		Approved:     true,
	}
	if _, err := s.store.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return repository.User{}, fmt.Errorf("%w: email or phone already registered", ErrConflict)
		}
		return repository.User{}, err
	}
	s.audit.Record(ctx, queue.ActionEvent{
		ActorID: meta.ActorID, Action: "CREATE", Model: "User",
		Details:   map[string]interface{}{"email": u.Email, "role": u.Role},
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	return u, nil
}

// Get loads one account by id.
func (s *Accounts) Get(ctx context.Context, id uint64) (repository.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return repository.User{}, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	return u, err
}

// List pages through accounts, optionally filtered by a search term matched
// against name, email, phone and address.
func (s *Accounts) List(ctx context.Context, search string, page, limit int) ([]repository.User, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.store.List(ctx, strings.TrimSpace(search), (page-1)*limit, limit)
}

// ListPending returns accounts awaiting approval.
func (s *Accounts) ListPending(ctx context.Context) ([]repository.User, error) {
	return s.store.ListPending(ctx)
}

// UpdateProfile patches the mutable profile fields. Empty fields keep their
// current value.
func (s *Accounts) UpdateProfile(ctx context.Context, id uint64, firstName, lastName, address string, meta RequestMeta) (repository.User, error) {
	if err := s.store.UpdateProfile(ctx, id, firstName, lastName, address, meta.ActorID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return repository.User{}, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return repository.User{}, err
	}
	s.audit.Record(ctx, queue.ActionEvent{
		ActorID: meta.ActorID, Action: "UPDATE", Model: "User",
		Details:   map[string]interface{}{"userId": id},
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	return s.Get(ctx, id)
}

// Approve marks a pending account as approved so it can log in.
func (s *Accounts) Approve(ctx context.Context, id uint64, meta RequestMeta) error {
	if err := s.store.SetApproved(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return err
	}
	s.audit.Record(ctx, queue.ActionEvent{
		ActorID: meta.ActorID, Action: "APPROVE", Model: "User",
		Details:   map[string]interface{}{"userId": id},
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	return nil
}

// SetActive toggles login eligibility without touching the account data.
func (s *Accounts) SetActive(ctx context.Context, id uint64, active bool, meta RequestMeta) error {
	if err := s.store.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return err
	}
	action := "DEACTIVATE"
	if active {
		action = "ACTIVATE"
	}
	s.audit.Record(ctx, queue.ActionEvent{
		ActorID: meta.ActorID, Action: action, Model: "User",
		Details:   map[string]interface{}{"userId": id},
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	return nil
}

// Delete soft-deletes an account. The row survives for audit trails but the
// account disappears from lookups and can no longer authenticate.
func (s *Accounts) Delete(ctx context.Context, id uint64, meta RequestMeta) error {
	if err := s.store.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return err
	}
	s.audit.Record(ctx, queue.ActionEvent{
		ActorID: meta.ActorID, Action: "DELETE", Model: "User",
		Details:   map[string]interface{}{"userId": id},
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	return nil
}

// SetProfileImage records a stored image path against the account.
func (s *Accounts) SetProfileImage(ctx context.Context, id uint64, path string) error {
	if path == "" {
		return fmt.Errorf("%w: image path is required", ErrInvalidInput)
	}
	if err := s.store.SetProfileImage(ctx, id, path); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return err
	}
	return nil
}
