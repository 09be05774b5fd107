package impl

import (
	"context"
	"strings"
	"sync"
	"time"

	"authflow/internal/domain"
	"authflow/internal/store"

	"github.com/google/uuid"
)

type memoryUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[uuid.UUID]*domain.User)}
}

// Create enforces the same case-insensitive uniqueness as the citext indexes.
func (m *memoryUserStore) Create(_ context.Context, usr *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, usr.Email) {
			return &domain.DuplicateIdentityError{Field: domain.FieldEmail}
		}
		if strings.EqualFold(u.Username, usr.Username) {
			return &domain.DuplicateIdentityError{Field: domain.FieldUsername}
		}
	}
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	copy := *usr
	m.users[usr.ID] = &copy
	return nil
}

func (m *memoryUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	copy := *u
	return &copy, nil
}

func (m *memoryUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *memoryUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return strings.EqualFold(u.Username, username) })
}

func (m *memoryUserStore) find(match func(*domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			copy := *u
			return &copy, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (m *memoryUserStore) UpdatePasswordHash(_ context.Context, userID uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return store.ErrRecordNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memoryUserStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// staleLookupStore answers every existence check with "not found", as if
// the pre-checks of concurrent requests all ran before any insert.
type staleLookupStore struct {
	*memoryUserStore
}

func (s staleLookupStore) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, store.ErrRecordNotFound
}

func (s staleLookupStore) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, store.ErrRecordNotFound
}

// firstEmailLookupMisses hides an existing record from the first email lookup only.
type firstEmailLookupMisses struct {
	*memoryUserStore
	once sync.Once
}

func (s *firstEmailLookupMisses) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	missed := false
	s.once.Do(func() { missed = true })
	if missed {
		return nil, store.ErrRecordNotFound
	}
	return s.memoryUserStore.GetByEmail(ctx, email)
}

type memoryCodeStore struct {
	mu    sync.Mutex
	codes map[string][]domain.OneTimeCode
}

func newMemoryCodeStore() *memoryCodeStore {
	return &memoryCodeStore{codes: make(map[string][]domain.OneTimeCode)}
}

func (m *memoryCodeStore) Replace(_ context.Context, code *domain.OneTimeCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code.Email] = []domain.OneTimeCode{*code}
	return nil
}

func (m *memoryCodeStore) Find(_ context.Context, email, codeHash string) (*domain.OneTimeCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.codes[email]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].CodeHash == codeHash {
			c := list[i]
			return &c, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (m *memoryCodeStore) DeleteByEmail(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, email)
	return nil
}

func (m *memoryCodeStore) count(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.codes[email])
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{now: t} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type sentCode struct {
	to, code string
}

type recordingEmailService struct {
	mu     sync.Mutex
	sent   []sentCode
	err    error
	onSend func()
}

func (r *recordingEmailService) SendPasswordResetCode(_ context.Context, to, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.onSend != nil {
		r.onSend()
	}
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentCode{to: to, code: code})
	return nil
}

func (r *recordingEmailService) last() sentCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return sentCode{}
	}
	return r.sent[len(r.sent)-1]
}

type stubVerifier struct {
	identity *domain.GoogleIdentity
	err      error
}

func (s stubVerifier) Verify(context.Context, string) (*domain.GoogleIdentity, error) {
	if s.err != nil {
		return nil, s.err
	}
	copy := *s.identity
	return &copy, nil
}

// countingPasswordService counts Verify calls on top of the real service.
type countingPasswordService struct {
	*PasswordServiceImpl
	mu       sync.Mutex
	verifies int
}

func (c *countingPasswordService) Verify(password, encoded string) (bool, bool) {
	c.mu.Lock()
	c.verifies++
	c.mu.Unlock()
	return c.PasswordServiceImpl.Verify(password, encoded)
}

func (c *countingPasswordService) verifyCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verifies
}
