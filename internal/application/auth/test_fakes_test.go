package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lanehart/authd/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

type auditRecorder struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *auditRecorder) record(action string, fields map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action: action, fields: fields})
}

func (a *auditRecorder) has(action string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.entries {
		if e.action == action {
			return true
		}
	}
	return false
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID    map[string]domain.User
	byEmail map[string]domain.User

	// injected errors (if set, method returns error)
	getByIDErr    error
	getByEmailErr error
	createErr     error
	updatePwdErr  error
	setVerifyErr  error
	setSuperErr   error
	setActiveErr  error

	// record calls
	updatedPwd []struct{ id, hash string }
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]domain.User{},
		byEmail: map[string]domain.User{},
	}
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	// mirror the store's unique constraint
	if _, exists := f.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updatePwdErr != nil {
		return f.updatePwdErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	f.updatedPwd = append(f.updatedPwd, struct{ id, hash string }{userID, newHash})
	return nil
}

func (f *fakeUserRepo) SetVerified(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setVerifyErr != nil {
		return f.setVerifyErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Verified = true
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) SetSuperuser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setSuperErr != nil {
		return f.setSuperErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Superuser = true
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) SetActive(ctx context.Context, userID string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setActiveErr != nil {
		return f.setActiveErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Active = active
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (f *fakeHasher) Hash(ctx context.Context, pw string) (string, error) {
	if f.hashFn != nil {
		return f.hashFn(pw)
	}
	return "hashed:" + pw, nil
}

func (f *fakeHasher) Compare(hash, pw string) error {
	if f.compareFn != nil {
		return f.compareFn(hash, pw)
	}
	if hash == "hashed:"+pw {
		return nil
	}
	return errors.New("mismatch")
}

type fakeSigner struct {
	signErr error
}

func (f *fakeSigner) SignAccessToken(userID, email string, superuser bool, ttl time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return fmt.Sprintf("tok.%s.%s.%v", userID, email, superuser), nil
}

func (f *fakeSigner) VerifyAccessToken(token string) (TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 || parts[0] != "tok" {
		return TokenClaims{}, domain.ErrTokenInvalid()
	}
	return TokenClaims{
		UserID:    parts[1],
		Email:     parts[2],
		Superuser: parts[3] == "true",
		Exp:       time.Now().Add(time.Hour),
	}, nil
}

type fakeOTT struct {
	mu sync.Mutex

	saved map[string]string // kind:token -> userID

	saveErr    error
	consumeErr error
}

func newFakeOTT() *fakeOTT {
	return &fakeOTT{saved: map[string]string{}}
}

func (f *fakeOTT) key(kind OneTimeTokenKind, token string) string {
	return string(kind) + ":" + token
}

func (f *fakeOTT) Save(ctx context.Context, kind OneTimeTokenKind, token, userID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[f.key(kind, token)] = userID
	return nil
}

func (f *fakeOTT) Consume(ctx context.Context, kind OneTimeTokenKind, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.consumeErr != nil {
		return "", f.consumeErr
	}
	k := f.key(kind, token)
	userID, ok := f.saved[k]
	if !ok {
		return "", domain.ErrOneTimeTokenInvalid()
	}
	delete(f.saved, k)
	return userID, nil
}

func (f *fakeOTT) Peek(ctx context.Context, kind OneTimeTokenKind, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	userID, ok := f.saved[f.key(kind, token)]
	if !ok {
		return "", domain.ErrOneTimeTokenInvalid()
	}
	return userID, nil
}

// tokenFor returns the outstanding token of a kind for a user, or "".
func (f *fakeOTT) tokenFor(kind OneTimeTokenKind, userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := string(kind) + ":"
	for k, v := range f.saved {
		if v == userID && strings.HasPrefix(k, prefix) {
			return strings.TrimPrefix(k, prefix)
		}
	}
	return ""
}

type fakeNotifier struct {
	mu sync.Mutex

	verifySent []Notification
	resetSent  []Notification

	verifyErr error
	resetErr  error
}

func (f *fakeNotifier) SendVerifyEmail(ctx context.Context, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.verifyErr != nil {
		return f.verifyErr
	}
	f.verifySent = append(f.verifySent, n)
	return nil
}

func (f *fakeNotifier) SendPasswordReset(ctx context.Context, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.resetErr != nil {
		return f.resetErr
	}
	f.resetSent = append(f.resetSent, n)
	return nil
}

/*
Service construction helper
*/

func newSvcForTest(t *testing.T) (*Service, *fakeUserRepo, *fakeHasher, *fakeSigner, *fakeOTT, *fakeNotifier, *auditRecorder) {
	t.Helper()

	users := newFakeUserRepo()
	hasher := &fakeHasher{}
	signer := &fakeSigner{}
	ott := newFakeOTT()
	notifier := &fakeNotifier{}
	rec := &auditRecorder{}

	svc := NewService(users, hasher, signer, ott, notifier, Config{
		AccessTTL:            time.Hour,
		VerifyEmailBaseURL:   "http://app/api/v1/auth/verify-email/",
		PasswordResetBaseURL: "http://app/reset-password/",
	}).WithAudit(rec.record)

	return svc, users, hasher, signer, ott, notifier, rec
}

// seedUser inserts a user directly into the fake repo.
func seedUser(users *fakeUserRepo, u domain.User) domain.User {
	users.mu.Lock()
	defer users.mu.Unlock()
	users.byID[u.ID] = u
	users.byEmail[u.Email] = u
	return u
}
