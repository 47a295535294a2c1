package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/BradenHooton/bizadmin/internal/auth"
	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/BradenHooton/bizadmin/internal/query"
	pkgauth "github.com/BradenHooton/bizadmin/pkg/auth"
	pkglogger "github.com/BradenHooton/bizadmin/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "a-sufficiently-long-test-secret-value"

// memoryPrincipals is an in-memory PrincipalRepository and PrincipalStore
// with the same lockout semantics as the SQL implementation. Writes that
// touch tokens apply to the principal only when the token write succeeds.
type memoryPrincipals struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*models.Principal
	tokens *memoryTokens

	// GetByIdentifierErr, when set, is returned by GetByIdentifier
	GetByIdentifierErr error
}

func newMemoryPrincipals(tokens *memoryTokens, ps ...*models.Principal) *memoryPrincipals {
	m := &memoryPrincipals{byID: make(map[uuid.UUID]*models.Principal), tokens: tokens}
	for _, p := range ps {
		m.byID[p.ID] = p
	}
	return m
}

func (m *memoryPrincipals) snapshot(p *models.Principal) *models.Principal {
	cp := *p
	return &cp
}

func (m *memoryPrincipals) get(id uuid.UUID) *models.Principal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(m.byID[id])
}

func (m *memoryPrincipals) GetByID(ctx context.Context, id uuid.UUID) (*models.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return m.snapshot(p), nil
}

func (m *memoryPrincipals) GetByIdentifier(ctx context.Context, identifier string) (*models.Principal, error) {
	if m.GetByIdentifierErr != nil {
		return nil, m.GetByIdentifierErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if strings.EqualFold(p.Username, identifier) || strings.EqualFold(p.Email, identifier) {
			return m.snapshot(p), nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memoryPrincipals) Create(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Username, p.Username) || strings.EqualFold(existing.Email, p.Email) {
			return nil, models.ErrConflict
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	p.CreatedBy = auth.ActorRef(ctx)
	m.byID[p.ID] = m.snapshot(p)
	return m.snapshot(p), nil
}

func (m *memoryPrincipals) Query(ctx context.Context, plan *query.Plan[*models.Principal]) (query.PagedResult[*models.Principal], error) {
	m.mu.Lock()
	all := make([]*models.Principal, 0, len(m.byID))
	for _, p := range m.byID {
		all = append(all, m.snapshot(p))
	}
	m.mu.Unlock()
	return query.ApplyPlan(plan, all, func(p *models.Principal) *models.Principal { return p }), nil
}

func (m *memoryPrincipals) RecordFailedLogin(ctx context.Context, id uuid.UUID, threshold int, lockoutEnd, now time.Time) (*models.LockoutState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if p.IsLocked(now) {
		return &models.LockoutState{FailedAttempts: p.FailedLoginAttempts, LockoutEnd: p.LockoutEnd}, nil
	}
	p.FailedLoginAttempts++
	if p.FailedLoginAttempts >= threshold {
		end := lockoutEnd
		p.LockoutEnd = &end
	}
	return &models.LockoutState{FailedAttempts: p.FailedLoginAttempts, LockoutEnd: p.LockoutEnd, Applied: true}, nil
}

func (m *memoryPrincipals) RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, now time.Time, token *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	if err := m.tokens.Create(ctx, token); err != nil {
		return err
	}
	p.FailedLoginAttempts = 0
	p.LockoutEnd = nil
	p.LastLoginAt = &now
	return nil
}

func (m *memoryPrincipals) Unlock(ctx context.Context, id uuid.UUID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	p.FailedLoginAttempts = 0
	p.LockoutEnd = nil
	p.ModifiedAt = &now
	return nil
}

func (m *memoryPrincipals) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, now time.Time, revokeReason string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return 0, models.ErrNotFound
	}
	var revoked int64
	if revokeReason != "" {
		n, err := m.tokens.revokeAll(id, revokeReason, now)
		if err != nil {
			return 0, err
		}
		revoked = n
	}
	p.PasswordHash = hash
	p.PasswordChangedAt = &now
	return revoked, nil
}

func (m *memoryPrincipals) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PrincipalStatus, now time.Time, revokeReason string) (*models.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if revokeReason != "" {
		if _, err := m.tokens.revokeAll(id, revokeReason, now); err != nil {
			return nil, err
		}
	}
	p.Status = status
	p.ModifiedAt = &now
	return m.snapshot(p), nil
}

// memoryTokens is an in-memory RefreshTokenRepository
type memoryTokens struct {
	mu     sync.Mutex
	byHash map[string]*models.RefreshToken

	// RotateErr, when set, is returned by Rotate
	RotateErr error
	// CreateErr, when set, is returned by Create
	CreateErr error
	// RevokeAllErr, when set, fails bulk revocation before any token changes
	RevokeAllErr error
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{byHash: make(map[string]*models.RefreshToken)}
}

func (m *memoryTokens) Create(ctx context.Context, t *models.RefreshToken) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.byHash[t.TokenHash] = &cp
	return nil
}

func (m *memoryTokens) GetByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byHash[hash]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memoryTokens) find(id uuid.UUID) *models.RefreshToken {
	for _, t := range m.byHash {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (m *memoryTokens) Rotate(ctx context.Context, oldID uuid.UUID, next *models.RefreshToken, now time.Time) error {
	if m.RotateErr != nil {
		return m.RotateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	old := m.find(oldID)
	if old == nil || old.RevokedAt != nil {
		return models.ErrUnauthorized
	}
	reason := models.RevokeReasonRotated
	old.RevokedAt = &now
	old.RevokedReason = &reason
	old.ReplacedByID = &next.ID
	cp := *next
	m.byHash[next.TokenHash] = &cp
	return nil
}

func (m *memoryTokens) Revoke(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.find(id); t != nil && t.RevokedAt == nil {
		t.RevokedAt = &now
		t.RevokedReason = &reason
	}
	return nil
}

func (m *memoryTokens) revokeAll(principalID uuid.UUID, reason string, now time.Time) (int64, error) {
	if m.RevokeAllErr != nil {
		return 0, m.RevokeAllErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.byHash {
		if t.PrincipalID == principalID && t.RevokedAt == nil {
			t.RevokedAt = &now
			t.RevokedReason = &reason
			n++
		}
	}
	return n, nil
}

func (m *memoryTokens) active(principalID uuid.UUID, now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.byHash {
		if t.PrincipalID == principalID && t.IsActive(now) {
			n++
		}
	}
	return n
}

// MockLockoutNotifier implements LockoutNotifier for testing
type MockLockoutNotifier struct {
	mu    sync.Mutex
	calls []uuid.UUID
}

func (m *MockLockoutNotifier) NotifyLockout(ctx context.Context, p *models.Principal, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, p.ID)
	return nil
}

func (m *MockLockoutNotifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// MockCatalogRepository implements CatalogRepository for testing
type MockCatalogRepository[T any] struct {
	QueryFunc      func(ctx context.Context, plan *query.Plan[T]) (query.PagedResult[T], error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (T, error)
	CreateFunc     func(ctx context.Context, v T) (T, error)
	SoftDeleteFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *MockCatalogRepository[T]) Query(ctx context.Context, plan *query.Plan[T]) (query.PagedResult[T], error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, plan)
	}
	return query.NewPagedResult[T](nil, 0, plan.PageNumber(), plan.PageSize()), nil
}

func (m *MockCatalogRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	var zero T
	return zero, models.ErrNotFound
}

func (m *MockCatalogRepository[T]) Create(ctx context.Context, v T) (T, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, v)
	}
	return v, nil
}

func (m *MockCatalogRepository[T]) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, id)
	}
	return nil
}

// testClock is a settable clock for lockout expiry tests
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(pkglogger.NewWithWriter(io.Discard, "error"))
}

func testHasher() *pkgauth.PasswordHasher {
	return pkgauth.NewPasswordHasher(bcrypt.MinCost)
}

// NewTestPrincipal creates an active principal with the given password
func NewTestPrincipal(username, password string) *models.Principal {
	hash, err := testHasher().Hash(password)
	if err != nil {
		panic(err)
	}
	return &models.Principal{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		DisplayName:  username,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Status:       models.StatusActive,
	}
}

type authFixture struct {
	svc        *AuthService
	principals *memoryPrincipals
	tokens     *memoryTokens
	notifier   *MockLockoutNotifier
	clock      *testClock
}

func newAuthFixture(ps ...*models.Principal) *authFixture {
	tokens := newMemoryTokens()
	principals := newMemoryPrincipals(tokens, ps...)
	clock := newTestClock()
	tm := auth.NewTokenManager(testJWTSecret, 15*time.Minute)
	logger := pkglogger.NewWithWriter(io.Discard, "error")

	svc, err := NewAuthService(principals, tokens, tm, testHasher(), AuthPolicy{
		MaxFailedAttempts:  5,
		LockoutDuration:    30 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}, logger, testLogger())
	if err != nil {
		panic(err)
	}
	svc.now = clock.Now

	notifier := &MockLockoutNotifier{}
	svc.SetLockoutNotifier(notifier)

	return &authFixture{svc: svc, principals: principals, tokens: tokens, notifier: notifier, clock: clock}
}
