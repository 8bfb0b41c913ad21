// identity.go is the identity and session core: phone-OTP-gated
// registration, password login with a single active session per user,
// bound-token validation, device-scoped logout and OTP-gated password
// reset. It talks to the credential store, the OTP ledger, the SMS
// notifier and the audit recorder through small interfaces so the logic
// is testable without infrastructure.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/queue"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/repository"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/utils"
)

// UserStore is the slice of the credential store the identity core needs.
type UserStore interface {
	Create(ctx context.Context, u *repository.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	GetByPhone(ctx context.Context, phone string) (repository.User, error)
	GetByID(ctx context.Context, id uint64) (repository.User, error)
	BindSession(ctx context.Context, id uint64, token string, dev repository.DeviceMeta, at time.Time) error
	ClearSessionForDevice(ctx context.Context, id uint64, deviceID string) error
	UpdatePassword(ctx context.Context, phone, hash string) error
}

// OTPStore is the short-lived phone→code ledger: one pending code per
// phone, replaced on every Put, reaped at expiry.
type OTPStore interface {
	Put(ctx context.Context, rec repository.OTPRecord) error
	Get(ctx context.Context, phone string) (repository.OTPRecord, error)
	Delete(ctx context.Context, phone string) error
}

// Notifier sends a message to a phone number. Non-success is a hard failure
// of the calling flow.
type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}

// Recorder is the fire-and-forget audit sink.
type Recorder interface {
	Record(ctx context.Context, ev queue.ActionEvent)
}

// RequestMeta carries per-request data recorded alongside audit events and
// device bindings. ActorID is the authenticated caller, zero for anonymous
// flows.
type RequestMeta struct {
	ActorID   uint64
	IPAddress string
	UserAgent string
	Device    repository.DeviceMeta
}

// Session is the result of a successful login or completed registration.
type Session struct {
	Token   string
	Expires time.Time
	User    repository.User
}

// RegistrationProfile is the caller-supplied identity data for the
// registration flow.
type RegistrationProfile struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

var phonePattern = regexp.MustCompile(`^\d{10,15}$`)

// Identity orchestrates the identity flows.
type Identity struct {
	users    UserStore
	otps     OTPStore
	notifier Notifier
	audit    Recorder

	secret     string
	tokenDays  int
	bcryptCost int
	otpTTL     time.Duration

	now func() time.Time
}

// NewIdentity wires the identity core. now is the clock used for OTP expiry
// and login stamps; pass nil for the real clock.
func NewIdentity(users UserStore, otps OTPStore, notifier Notifier, rec Recorder,
	secret string, tokenDays, bcryptCost, otpTTLMinutes int) *Identity {
	return &Identity{
		users:      users,
		otps:       otps,
		notifier:   notifier,
		audit:      rec,
		secret:     secret,
		tokenDays:  tokenDays,
		bcryptCost: bcryptCost,
		otpTTL:     time.Duration(otpTTLMinutes) * time.Minute,
		now:        time.Now,
	}
}

// RequestRegistration is phase one of registration: it verifies the email
// and phone are unclaimed, stores a fresh one-time code for the phone
// (replacing any pending one) and asks the notifier to deliver it. Repeating
// the request never creates an identity; it only re-issues the code.
func (s *Identity) RequestRegistration(ctx context.Context, p RegistrationProfile) error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	if p.Email == "" || p.Phone == "" {
		return fmt.Errorf("%w: email and phone are required", ErrInvalidInput)
	}
	if !phonePattern.MatchString(p.Phone) {
		return fmt.Errorf("%w: phone must be 10-15 digits", ErrInvalidInput)
	}

	if _, err := s.users.GetByEmail(ctx, p.Email); err == nil {
		return fmt.Errorf("%w: email already registered", ErrConflict)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	if _, err := s.users.GetByPhone(ctx, p.Phone); err == nil {
		return fmt.Errorf("%w: phone already registered", ErrConflict)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	return s.issueOTP(ctx, p.Phone)
}

// issueOTP generates, stores and delivers a code for a phone. The ledger is
// written before the notifier is called, matching upsert-then-send order: a
// failed send leaves a pending record behind, which the next request simply
// overwrites and the TTL eventually reaps.
func (s *Identity) issueOTP(ctx context.Context, phone string) error {
	code, err := utils.NewOTPCode()
	if err != nil {
		return err
	}
	rec := repository.OTPRecord{
		Phone:     phone,
		Code:      code,
		ExpiresAt: s.now().UTC().Add(s.otpTTL),
	}
	if err := s.otps.Put(ctx, rec); err != nil {
		return err
	}
	if err := s.notifier.Send(ctx, phone, OTPMessage(code)); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}

// verifyAndConsumeOTP checks the pending code for a phone and consumes it on
// success. A missing record, wrong code and passed expiry are all the same
// failure to the caller.
func (s *Identity) verifyAndConsumeOTP(ctx context.Context, phone, code string) error {
	rec, err := s.otps.Get(ctx, phone)
	if errors.Is(err, repository.ErrOTPNotFound) {
		return fmt.Errorf("%w: invalid or expired code", ErrInvalidCredential)
	}
	if err != nil {
		return err
	}
	if rec.Code != code || s.now().UTC().After(rec.ExpiresAt) {
		return fmt.Errorf("%w: invalid or expired code", ErrInvalidCredential)
	}
	// One-time use: the code is gone whether or not the rest of the flow
	// succeeds.
	return s.otps.Delete(ctx, phone)
}

// CompleteRegistration is phase two: it verifies and consumes the code, then
// creates the identity (approved and active) and issues its first session
// token in one fused operation.
func (s *Identity) CompleteRegistration(ctx context.Context, p RegistrationProfile, code, password string, meta RequestMeta) (Session, error) {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	if p.Email == "" || p.Phone == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email, phone and password are required", ErrInvalidInput)
	}

	if err := s.verifyAndConsumeOTP(ctx, p.Phone, code); err != nil {
		return Session{}, err
	}

	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return Session{}, err
	}
	u := repository.User{
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		Phone:        p.Phone,
		PasswordHash: hash,
		Role:         "user",
		Active:       true,
		Approved:     true,
	}
	if _, err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return Session{}, fmt.Errorf("%w: email or phone already registered", ErrConflict)
		}
		return Session{}, err
	}

	sess, err := s.bindSession(ctx, &u, meta)
	if err != nil {
		return Session{}, err
	}

	s.audit.Record(ctx, queue.ActionEvent{
		ActorID: u.ID, Action: "REGISTER", Model: "User",
		Details:   map[string]interface{}{"email": u.Email},
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	return sess, nil
}

// Login authenticates by email and password and binds a fresh session,
// silently invalidating any previously issued token. Two concurrent logins
// both succeed; the chronologically last bound token is the one that
// survives.
func (s *Identity) Login(ctx context.Context, email, password string, meta RequestMeta) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return Session{}, fmt.Errorf("%w: no account for this email", ErrNotFound)
	}
	if err != nil {
		return Session{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, fmt.Errorf("%w: wrong password", ErrInvalidCredential)
	}
	if !u.Active {
		return Session{}, fmt.Errorf("%w: account deactivated", ErrForbidden)
	}
	if !u.Approved {
		return Session{}, fmt.Errorf("%w: account pending approval", ErrForbidden)
	}

	sess, err := s.bindSession(ctx, &u, meta)
	if err != nil {
		return Session{}, err
	}

	s.audit.Record(ctx, queue.ActionEvent{
		ActorID: u.ID, Action: "LOGIN", Model: "User",
		Details:   map[string]interface{}{"email": u.Email},
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	return sess, nil
}

// bindSession mints a token and overwrites the user's bound session and
// device markers. The updated token is reflected on u so the caller returns
// a consistent view.
func (s *Identity) bindSession(ctx context.Context, u *repository.User, meta RequestMeta) (Session, error) {
	tok, err := utils.NewSessionTokenAt(s.secret, u.ID, u.Role, s.tokenDays, s.now())
	if err != nil {
		return Session{}, err
	}
	now := s.now().UTC()
	if err := s.users.BindSession(ctx, u.ID, tok.Token, meta.Device, now); err != nil {
		return Session{}, err
	}
	u.ActiveToken.String = tok.Token
	u.ActiveToken.Valid = true
	u.LastLogin.Time = now
	u.LastLogin.Valid = true
	return Session{Token: tok.Token, Expires: tok.Exp, User: *u}, nil
}

// Validate checks a presented token: signature and expiry first, then that
// it is still the user's currently bound session. A stale token from a
// superseded session fails with ErrSessionSuperseded and changes nothing.
func (s *Identity) Validate(ctx context.Context, token string) (repository.User, error) {
	claims, err := utils.ParseSessionToken(s.secret, token)
	if err != nil {
		return repository.User{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return repository.User{}, fmt.Errorf("%w: user no longer exists", ErrNotFound)
	}
	if err != nil {
		return repository.User{}, err
	}
	if u.Deleted {
		return repository.User{}, fmt.Errorf("%w: user no longer exists", ErrNotFound)
	}
	if !u.ActiveToken.Valid || u.ActiveToken.String != token {
		return repository.User{}, ErrSessionSuperseded
	}
	return u, nil
}

// LogoutDevice clears the bound session only when deviceID matches the
// device recorded at login. A stale or foreign device id is a silent no-op
// so duplicate logout calls are harmless.
func (s *Identity) LogoutDevice(ctx context.Context, userID uint64, deviceID string, meta RequestMeta) error {
	if userID == 0 || deviceID == "" {
		return fmt.Errorf("%w: userId and deviceId are required", ErrInvalidInput)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return err
	}
	if err := s.users.ClearSessionForDevice(ctx, userID, deviceID); err != nil {
		return err
	}
	s.audit.Record(ctx, queue.ActionEvent{
		ActorID: userID, Action: "LOGOUT", Model: "User",
		Details:   map[string]interface{}{"deviceId": deviceID},
		IPAddress: meta.IPAddress, UserAgent: meta.UserAgent,
	})
	return nil
}

// RequestPasswordReset is phase one of forgot-password: the phone must
// belong to an existing account, then a code is issued the same way as for
// registration.
func (s *Identity) RequestPasswordReset(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidInput)
	}
	if _, err := s.users.GetByPhone(ctx, phone); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: no account for this phone", ErrNotFound)
		}
		return err
	}
	return s.issueOTP(ctx, phone)
}

// ResetPassword is phase two: it verifies and consumes the code, then
// rehashes and stores the new password. It deliberately does not bind a
// session; resetting a password is not a login.
func (s *Identity) ResetPassword(ctx context.Context, phone, code, newPassword string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidInput)
	}
	if err := s.verifyAndConsumeOTP(ctx, phone, code); err != nil {
		return err
	}
	if newPassword == "" {
		return fmt.Errorf("%w: password is required to reset", ErrInvalidInput)
	}
	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, phone, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: no account for this phone", ErrNotFound)
		}
		return err
	}
	return nil
}
