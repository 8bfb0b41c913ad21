package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/queue"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/repository"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/utils"
)

// ---- fakes ----

type fakeUsers struct {
	nextID uint64
	byID   map[uint64]*repository.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint64]*repository.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *repository.User) (uint64, error) {
	for _, ex := range f.byID {
		if !ex.Deleted && (ex.Email == u.Email || ex.Phone == u.Phone) {
			return 0, repository.ErrDuplicate
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.byID[u.ID] = &cp
	return u.ID, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (repository.User, error) {
	for _, u := range f.byID {
		if u.Email == email && !u.Deleted {
			return *u, nil
		}
	}
	return repository.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByPhone(_ context.Context, phone string) (repository.User, error) {
	for _, u := range f.byID {
		if u.Phone == phone && !u.Deleted {
			return *u, nil
		}
	}
	return repository.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (repository.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return repository.User{}, repository.ErrUserNotFound
	}
	return *u, nil
}

func (f *fakeUsers) BindSession(_ context.Context, id uint64, token string, dev repository.DeviceMeta, at time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.ActiveToken.String = token
	u.ActiveToken.Valid = true
	if dev.DeviceID != "" {
		u.DeviceID.String = dev.DeviceID
		u.DeviceID.Valid = true
	}
	u.LastLogin.Time = at
	u.LastLogin.Valid = true
	return nil
}

func (f *fakeUsers) ClearSessionForDevice(_ context.Context, id uint64, deviceID string) error {
	u, ok := f.byID[id]
	if !ok {
		return nil
	}
	// Mirrors the SQL: the WHERE clause matches zero rows for a foreign
	// device id and the call silently does nothing.
	if !u.DeviceID.Valid || u.DeviceID.String != deviceID {
		return nil
	}
	u.ActiveToken = sql.NullString{}
	u.DeviceID = sql.NullString{}
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, phone, hash string) error {
	for _, u := range f.byID {
		if u.Phone == phone && !u.Deleted {
			u.PasswordHash = hash
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type fakeOTPs struct {
	byPhone map[string]repository.OTPRecord
	putErr  error
}

func newFakeOTPs() *fakeOTPs { return &fakeOTPs{byPhone: map[string]repository.OTPRecord{}} }

func (f *fakeOTPs) Put(_ context.Context, rec repository.OTPRecord) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.byPhone[rec.Phone] = rec
	return nil
}

func (f *fakeOTPs) Get(_ context.Context, phone string) (repository.OTPRecord, error) {
	rec, ok := f.byPhone[phone]
	if !ok {
		return repository.OTPRecord{}, repository.ErrOTPNotFound
	}
	return rec, nil
}

func (f *fakeOTPs) Delete(_ context.Context, phone string) error {
	delete(f.byPhone, phone)
	return nil
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, phone, message string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, phone+": "+message)
	return nil
}

type fakeRecorder struct {
	events []queue.ActionEvent
}

func (f *fakeRecorder) Record(_ context.Context, ev queue.ActionEvent) {
	f.events = append(f.events, ev)
}

func (f *fakeRecorder) actions() []string {
	out := make([]string, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Action)
	}
	return out
}

// ---- harness ----

type identityFix struct {
	svc      *Identity
	users    *fakeUsers
	otps     *fakeOTPs
	notifier *fakeNotifier
	audit    *fakeRecorder
	clock    *time.Time
}

func newIdentityFix(t *testing.T) *identityFix {
	t.Helper()
	f := &identityFix{
		users:    newFakeUsers(),
		otps:     newFakeOTPs(),
		notifier: &fakeNotifier{},
		audit:    &fakeRecorder{},
	}
	// The jwt library checks exp against the wall clock, so the test clock
	// starts at real now and only moves forward by explicit advances.
	now := time.Now().UTC().Truncate(time.Second)
	f.clock = &now
	f.svc = NewIdentity(f.users, f.otps, f.notifier, f.audit, "test-secret", 30, 4, 5)
	f.svc.now = func() time.Time { return *f.clock }
	return f
}

func (f *identityFix) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

var testProfile = RegistrationProfile{
	FirstName: "Asha", LastName: "Rao",
	Email: "asha@example.com", Phone: "9876543210",
}

func (f *identityFix) register(t *testing.T) Session {
	t.Helper()
	if err := f.svc.RequestRegistration(context.Background(), testProfile); err != nil {
		t.Fatalf("RequestRegistration: %v", err)
	}
	code := f.otps.byPhone[testProfile.Phone].Code
	sess, err := f.svc.CompleteRegistration(context.Background(), testProfile, code, "s3cret", RequestMeta{})
	if err != nil {
		t.Fatalf("CompleteRegistration: %v", err)
	}
	return sess
}

// ---- registration ----

func TestRequestRegistrationStoresAndSendsCode(t *testing.T) {
	f := newIdentityFix(t)

	if err := f.svc.RequestRegistration(context.Background(), testProfile); err != nil {
		t.Fatalf("RequestRegistration: %v", err)
	}

	rec, ok := f.otps.byPhone[testProfile.Phone]
	if !ok {
		t.Fatal("no pending code stored")
	}
	if len(rec.Code) != 6 {
		t.Fatalf("code %q is not 6 digits", rec.Code)
	}
	if got, want := rec.ExpiresAt, f.clock.Add(5*time.Minute); !got.Equal(want) {
		t.Fatalf("expiry = %v, want %v", got, want)
	}
	if len(f.notifier.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(f.notifier.sent))
	}
}

func TestRequestRegistrationReplacesPendingCode(t *testing.T) {
	f := newIdentityFix(t)
	ctx := context.Background()

	if err := f.svc.RequestRegistration(ctx, testProfile); err != nil {
		t.Fatal(err)
	}
	first := f.otps.byPhone[testProfile.Phone]

	f.advance(2 * time.Minute)
	if err := f.svc.RequestRegistration(ctx, testProfile); err != nil {
		t.Fatal(err)
	}
	second := f.otps.byPhone[testProfile.Phone]

	if !second.ExpiresAt.After(first.ExpiresAt) {
		t.Fatal("second request did not extend expiry")
	}
	// The first code must no longer verify once replaced, unless the draws
	// collided.
	if first.Code != second.Code {
		_, err := f.svc.CompleteRegistration(ctx, testProfile, first.Code, "pw", RequestMeta{})
		if !errors.Is(err, ErrInvalidCredential) {
			t.Fatalf("stale code accepted, err = %v", err)
		}
	}
}

func TestRequestRegistrationRejectsClaimedIdentity(t *testing.T) {
	f := newIdentityFix(t)
	f.register(t)

	err := f.svc.RequestRegistration(context.Background(), testProfile)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	other := testProfile
	other.Email = "someone-else@example.com" // same phone
	err = f.svc.RequestRegistration(context.Background(), other)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict for claimed phone", err)
	}
}

func TestRequestRegistrationValidatesPhone(t *testing.T) {
	f := newIdentityFix(t)
	for _, phone := range []string{"", "12345", "abcdefghij", "1234567890123456"} {
		p := testProfile
		p.Phone = phone
		if err := f.svc.RequestRegistration(context.Background(), p); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("phone %q: err = %v, want ErrInvalidInput", phone, err)
		}
	}
}

func TestRequestRegistrationNotifierFailure(t *testing.T) {
	f := newIdentityFix(t)
	f.notifier.err = fmt.Errorf("gateway 500")

	err := f.svc.RequestRegistration(context.Background(), testProfile)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
	// The pending record is written before the send. It stays behind and is
	// simply replaced by the next attempt.
	if _, ok := f.otps.byPhone[testProfile.Phone]; !ok {
		t.Fatal("pending code should survive a failed send")
	}

	f.notifier.err = nil
	if err := f.svc.RequestRegistration(context.Background(), testProfile); err != nil {
		t.Fatalf("retry after send failure: %v", err)
	}
}

func TestCompleteRegistrationIssuesSession(t *testing.T) {
	f := newIdentityFix(t)
	sess := f.register(t)

	if sess.Token == "" {
		t.Fatal("no token issued")
	}
	u := f.users.byID[sess.User.ID]
	if !u.ActiveToken.Valid || u.ActiveToken.String != sess.Token {
		t.Fatal("token not bound to the user")
	}
	if u.Role != "user" || !u.Active || !u.Approved {
		t.Fatalf("unexpected account state: role=%q active=%v approved=%v", u.Role, u.Active, u.Approved)
	}
	if u.PasswordHash == "s3cret" {
		t.Fatal("password stored in the clear")
	}
	if _, ok := f.otps.byPhone[testProfile.Phone]; ok {
		t.Fatal("code not consumed")
	}
	if got := f.audit.actions(); len(got) != 1 || got[0] != "REGISTER" {
		t.Fatalf("audit actions = %v", got)
	}
}

func TestCompleteRegistrationRejectsWrongCode(t *testing.T) {
	f := newIdentityFix(t)
	if err := f.svc.RequestRegistration(context.Background(), testProfile); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.CompleteRegistration(context.Background(), testProfile, "000000", "pw", RequestMeta{})
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
	// A wrong guess must not burn the pending code.
	if _, ok := f.otps.byPhone[testProfile.Phone]; !ok {
		t.Fatal("pending code consumed by a wrong guess")
	}
}

func TestCompleteRegistrationRejectsExpiredCode(t *testing.T) {
	f := newIdentityFix(t)
	if err := f.svc.RequestRegistration(context.Background(), testProfile); err != nil {
		t.Fatal(err)
	}
	code := f.otps.byPhone[testProfile.Phone].Code

	// One millisecond past the expiry instant is already too late.
	f.advance(5*time.Minute + time.Millisecond)
	_, err := f.svc.CompleteRegistration(context.Background(), testProfile, code, "pw", RequestMeta{})
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
}

func TestCompleteRegistrationWithoutRequest(t *testing.T) {
	f := newIdentityFix(t)
	_, err := f.svc.CompleteRegistration(context.Background(), testProfile, "123456", "pw", RequestMeta{})
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
}

// ---- login and sessions ----

func TestLoginGates(t *testing.T) {
	f := newIdentityFix(t)
	sess := f.register(t)
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, "nobody@example.com", "s3cret", RequestMeta{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown email: err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.Login(ctx, testProfile.Email, "wrong", RequestMeta{}); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("wrong password: err = %v, want ErrInvalidCredential", err)
	}

	f.users.byID[sess.User.ID].Active = false
	if _, err := f.svc.Login(ctx, testProfile.Email, "s3cret", RequestMeta{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("inactive: err = %v, want ErrForbidden", err)
	}
	f.users.byID[sess.User.ID].Active = true

	f.users.byID[sess.User.ID].Approved = false
	if _, err := f.svc.Login(ctx, testProfile.Email, "s3cret", RequestMeta{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unapproved: err = %v, want ErrForbidden", err)
	}
}

func TestSecondLoginSupersedesFirst(t *testing.T) {
	f := newIdentityFix(t)
	f.register(t)
	ctx := context.Background()

	a, err := f.svc.Login(ctx, testProfile.Email, "s3cret", RequestMeta{
		Device: repository.DeviceMeta{DeviceID: "phone-a"},
	})
	if err != nil {
		t.Fatal(err)
	}
	// Tokens embed iat at second resolution; advance so B differs from A.
	f.advance(time.Second)
	b, err := f.svc.Login(ctx, testProfile.Email, "s3cret", RequestMeta{
		Device: repository.DeviceMeta{DeviceID: "phone-b"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if a.Token == b.Token {
		t.Fatal("both logins issued the same token")
	}

	if _, err := f.svc.Validate(ctx, b.Token); err != nil {
		t.Fatalf("current session rejected: %v", err)
	}
	if _, err := f.svc.Validate(ctx, a.Token); !errors.Is(err, ErrSessionSuperseded) {
		t.Fatalf("superseded session: err = %v, want ErrSessionSuperseded", err)
	}
}

func TestValidateRejectsGarbageAndForeignTokens(t *testing.T) {
	f := newIdentityFix(t)
	sess := f.register(t)
	ctx := context.Background()

	if _, err := f.svc.Validate(ctx, "not-a-jwt"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("garbage token: err = %v, want ErrUnauthenticated", err)
	}

	forged, err := utils.NewSessionToken("other-secret", sess.User.ID, "user", 30)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Validate(ctx, forged.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("foreign-secret token: err = %v, want ErrUnauthenticated", err)
	}
}

func TestValidateRejectsDeletedUser(t *testing.T) {
	f := newIdentityFix(t)
	sess := f.register(t)

	f.users.byID[sess.User.ID].Deleted = true
	if _, err := f.svc.Validate(context.Background(), sess.Token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLogoutDeviceScoping(t *testing.T) {
	f := newIdentityFix(t)
	f.register(t)
	ctx := context.Background()

	sess, err := f.svc.Login(ctx, testProfile.Email, "s3cret", RequestMeta{
		Device: repository.DeviceMeta{DeviceID: "phone-a"},
	})
	if err != nil {
		t.Fatal(err)
	}

	// A stale device id clears nothing and reports success.
	if err := f.svc.LogoutDevice(ctx, sess.User.ID, "phone-old", RequestMeta{}); err != nil {
		t.Fatalf("stale-device logout: %v", err)
	}
	if _, err := f.svc.Validate(ctx, sess.Token); err != nil {
		t.Fatalf("session cleared by stale-device logout: %v", err)
	}

	if err := f.svc.LogoutDevice(ctx, sess.User.ID, "phone-a", RequestMeta{}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := f.svc.Validate(ctx, sess.Token); err == nil {
		t.Fatal("session survived logout")
	}
}

func TestLogoutUnknownUser(t *testing.T) {
	f := newIdentityFix(t)
	err := f.svc.LogoutDevice(context.Background(), 42, "phone-a", RequestMeta{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// ---- password reset ----

func TestPasswordResetFlow(t *testing.T) {
	f := newIdentityFix(t)
	old := f.register(t)
	ctx := context.Background()

	if err := f.svc.RequestPasswordReset(ctx, testProfile.Phone); err != nil {
		t.Fatal(err)
	}
	code := f.otps.byPhone[testProfile.Phone].Code

	if err := f.svc.ResetPassword(ctx, testProfile.Phone, code, "n3w-pass"); err != nil {
		t.Fatal(err)
	}

	// Resetting is not a login: the session bound at registration is still
	// the one on the record.
	u := f.users.byID[old.User.ID]
	if !u.ActiveToken.Valid || u.ActiveToken.String != old.Token {
		t.Fatal("reset rebound the active session")
	}

	if _, err := f.svc.Login(ctx, testProfile.Email, "s3cret", RequestMeta{}); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := f.svc.Login(ctx, testProfile.Email, "n3w-pass", RequestMeta{}); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestPasswordResetUnknownPhone(t *testing.T) {
	f := newIdentityFix(t)
	err := f.svc.RequestPasswordReset(context.Background(), "1112223334")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPasswordResetConsumesCodeBeforeValidation(t *testing.T) {
	f := newIdentityFix(t)
	f.register(t)
	ctx := context.Background()

	if err := f.svc.RequestPasswordReset(ctx, testProfile.Phone); err != nil {
		t.Fatal(err)
	}
	code := f.otps.byPhone[testProfile.Phone].Code

	// An empty replacement password fails, but only after the code was
	// verified and consumed; a second attempt needs a fresh code.
	err := f.svc.ResetPassword(ctx, testProfile.Phone, code, "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if _, ok := f.otps.byPhone[testProfile.Phone]; ok {
		t.Fatal("code not consumed")
	}
	err = f.svc.ResetPassword(ctx, testProfile.Phone, code, "n3w-pass")
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("reused code: err = %v, want ErrInvalidCredential", err)
	}
}
