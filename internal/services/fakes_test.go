package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magcentre/object-identity/internal/models"
	"github.com/magcentre/object-identity/internal/repository"
)

// memUserRepo is an in-memory account directory with the same uniqueness
// behavior as the mongo adapter.
type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Mobile == u.Mobile {
			return repository.ErrDuplicateKey
		}
		if u.Email != "" && strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateKey
		}
	}
	cp := *u
	cp.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	if cp.Role == "" {
		cp.Role = models.RoleUser
	}
	r.users[cp.ID] = &cp
	*u = cp
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email != "" && strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) FindByMobile(_ context.Context, mobile string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Mobile == mobile {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) SetOTP(_ context.Context, mobile string, otp int, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Mobile == mobile {
			o, e := otp, expiry
			u.OTP = &o
			u.OTPExpiry = &e
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (r *memUserRepo) MarkVerified(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.IsVerified = true
		u.OTP = nil
		u.OTPExpiry = nil
	}
	return nil
}

func (r *memUserRepo) MarkBucketCreated(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.IsBucketCreated = true
	}
	return nil
}

func (r *memUserRepo) SetFCMToken(_ context.Context, id primitive.ObjectID, fcmToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.FCMToken = fcmToken
	}
	return nil
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, upd repository.ProfileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if upd.Email != nil {
		for oid, other := range r.users {
			if oid != id && strings.EqualFold(other.Email, *upd.Email) {
				return repository.ErrDuplicateKey
			}
		}
		u.Email = strings.ToLower(*upd.Email)
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	if upd.FCMToken != nil {
		u.FCMToken = *upd.FCMToken
	}
	return nil
}

func (r *memUserRepo) IsEmailTaken(_ context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if id != excludeID && u.Email != "" && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) Search(_ context.Context, q string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q = strings.ToLower(q)
	var out []models.User
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.FirstName), q) ||
			strings.Contains(strings.ToLower(u.LastName), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, *u)
		}
	}
	return out, nil
}

// count reports how many accounts exist; setExpiry rewinds a stored
// challenge so expiry tests do not have to sleep.
func (r *memUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *memUserRepo) setExpiry(mobile string, expiry time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Mobile == mobile {
			e := expiry
			u.OTPExpiry = &e
		}
	}
}

func (r *memUserRepo) storedOTP(mobile string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Mobile == mobile && u.OTP != nil {
			return *u.OTP, true
		}
	}
	return 0, false
}

// memTokenRepo mirrors the mongo token store; Consume holds the lock across
// lookup and delete so only one concurrent caller wins.
type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (r *memTokenRepo) Create(_ context.Context, t *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	cp.CreatedAt = time.Now().UTC()
	r.tokens[cp.Token] = &cp
	return nil
}

func (r *memTokenRepo) FindActive(_ context.Context, token string, userID primitive.ObjectID) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || t.User != userID || t.Blacklisted || t.Type != models.TokenTypeRefresh {
		return nil, repository.ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTokenRepo) Consume(_ context.Context, token string, userID primitive.ObjectID) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || t.User != userID || t.Blacklisted || t.Type != models.TokenTypeRefresh {
		return nil, repository.ErrTokenNotFound
	}
	delete(r.tokens, token)
	cp := *t
	return &cp, nil
}

func (r *memTokenRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; !ok {
		return repository.ErrTokenNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *memTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// fakeSMS records dispatched messages.
type fakeSMS struct {
	mu         sync.Mutex
	sent       []string
	sendErr    error
	configured bool
}

func newFakeSMS() *fakeSMS { return &fakeSMS{configured: true} }

func (f *fakeSMS) SendSMS(_ context.Context, toMobile, message string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, toMobile+": "+message)
	return nil
}

func (f *fakeSMS) IsConfigured() bool { return f.configured }

func (f *fakeSMS) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakeBuckets counts provisioning calls so tests can assert idempotency.
type fakeBuckets struct {
	mu          sync.Mutex
	createCalls int
	createErr   error
	existing    map[string]bool
}

func newFakeBuckets() *fakeBuckets { return &fakeBuckets{existing: make(map[string]bool)} }

func (f *fakeBuckets) CreateBucket(_ context.Context, bucketID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	f.existing[bucketID] = true
	return nil
}

func (f *fakeBuckets) BucketExists(_ context.Context, bucketID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[bucketID], nil
}

func (f *fakeBuckets) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}
