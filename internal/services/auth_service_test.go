package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/bizadmin/internal/auth"
	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alicePassword = "Str0ng!Pass"

// ============================================================================
// Login
// ============================================================================

func TestAuthService_Login_Success(t *testing.T) {
	alice := NewTestPrincipal("alice", alicePassword)
	alice.FailedLoginAttempts = 2
	f := newAuthFixture(alice)

	session, err := f.svc.Login(context.Background(), "alice", alicePassword)
	require.NoError(t, err)

	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, int64(900), session.ExpiresInSeconds)
	assert.Equal(t, f.clock.Now().Add(7*24*time.Hour), session.RefreshTokenExpiresAt)
	assert.Equal(t, alice.ID, session.Principal.ID)
	assert.Equal(t, "Active", session.Principal.Status)

	stored, err := f.tokens.GetByHash(context.Background(), auth.HashRefreshToken(session.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, stored.PrincipalID)
	assert.NotEqual(t, session.RefreshToken, stored.TokenHash)

	got := f.principals.get(alice.ID)
	assert.Zero(t, got.FailedLoginAttempts)
	require.NotNil(t, got.LastLoginAt)
	assert.Equal(t, f.clock.Now(), *got.LastLoginAt)
}

func TestAuthService_Login_TokenStoreFailure(t *testing.T) {
	alice := NewTestPrincipal("alice", alicePassword)
	alice.FailedLoginAttempts = 3
	f := newAuthFixture(alice)
	f.tokens.CreateErr = errors.New("connection reset")

	_, err := f.svc.Login(context.Background(), "alice", alicePassword)
	assert.ErrorIs(t, err, models.ErrInternalServer)

	got := f.principals.get(alice.ID)
	assert.Equal(t, 3, got.FailedLoginAttempts)
	assert.Nil(t, got.LastLoginAt)
	assert.Empty(t, f.tokens.byHash)
}

func TestAuthService_Login_ByEmailIgnoringCase(t *testing.T) {
	f := newAuthFixture(NewTestPrincipal("alice", alicePassword))

	_, err := f.svc.Login(context.Background(), "  ALICE@example.com ", alicePassword)
	assert.NoError(t, err)
}

func TestAuthService_Login_GenericFailure(t *testing.T) {
	f := newAuthFixture(NewTestPrincipal("alice", alicePassword))

	_, unknownErr := f.svc.Login(context.Background(), "mallory", alicePassword)
	_, wrongErr := f.svc.Login(context.Background(), "alice", "Wr0ng!Pass")
	_, emptyErr := f.svc.Login(context.Background(), "", "")

	for _, err := range []error{unknownErr, wrongErr, emptyErr} {
		assert.ErrorIs(t, err, models.ErrUnauthorized)
		assert.Equal(t, ErrInvalidCredentials.Error(), err.Error())
	}
}

func TestAuthService_Login_LookupFailure(t *testing.T) {
	f := newAuthFixture()
	f.principals.GetByIdentifierErr = assert.AnError

	_, err := f.svc.Login(context.Background(), "alice", alicePassword)
	assert.ErrorIs(t, err, models.ErrInternalServer)
}

func TestAuthService_Login_LockoutStateMachine(t *testing.T) {
	alice := NewTestPrincipal("alice", alicePassword)
	f := newAuthFixture(alice)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		_, err := f.svc.Login(ctx, "alice", "bad")
		require.ErrorIs(t, err, models.ErrUnauthorized)
		assert.Equal(t, i, f.principals.get(alice.ID).FailedLoginAttempts)
		assert.Nil(t, f.principals.get(alice.ID).LockoutEnd)
	}
	assert.Zero(t, f.notifier.Calls())

	// The fifth failure still reports bad credentials but locks the account.
	_, err := f.svc.Login(ctx, "alice", "bad")
	require.ErrorIs(t, err, models.ErrUnauthorized)
	locked := f.principals.get(alice.ID)
	assert.Equal(t, 5, locked.FailedLoginAttempts)
	require.NotNil(t, locked.LockoutEnd)
	assert.Equal(t, f.clock.Now().Add(30*time.Minute), *locked.LockoutEnd)
	assert.Equal(t, 1, f.notifier.Calls())

	// While locked even the right password is rejected without counting.
	_, err = f.svc.Login(ctx, "alice", alicePassword)
	var lockedErr *models.LockedError
	require.ErrorAs(t, err, &lockedErr)
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.Equal(t, 30, lockedErr.RemainingMinutes())
	assert.Contains(t, err.Error(), "locked")
	assert.Equal(t, 5, f.principals.get(alice.ID).FailedLoginAttempts)

	f.clock.Advance(10*time.Minute + time.Second)
	_, err = f.svc.Login(ctx, "alice", "bad")
	require.ErrorAs(t, err, &lockedErr)
	assert.Equal(t, 20, lockedErr.RemainingMinutes())
	assert.Equal(t, 5, f.principals.get(alice.ID).FailedLoginAttempts)

	f.clock.Advance(20 * time.Minute)
	_, err = f.svc.Login(ctx, "alice", alicePassword)
	require.NoError(t, err)
	assert.Zero(t, f.principals.get(alice.ID).FailedLoginAttempts)
	assert.Nil(t, f.principals.get(alice.ID).LockoutEnd)
}

func TestAuthService_Login_StaleCounterRelocksAfterExpiry(t *testing.T) {
	alice := NewTestPrincipal("alice", alicePassword)
	f := newAuthFixture(alice)
	ctx := context.Background()

	for range 5 {
		_, _ = f.svc.Login(ctx, "alice", "bad")
	}
	f.clock.Advance(31 * time.Minute)

	_, err := f.svc.Login(ctx, "alice", "bad")
	require.ErrorIs(t, err, models.ErrUnauthorized)

	p := f.principals.get(alice.ID)
	assert.Equal(t, 6, p.FailedLoginAttempts)
	assert.True(t, p.IsLocked(f.clock.Now()))
	assert.Equal(t, 2, f.notifier.Calls())
}

func TestAuthService_Login_AccountStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  models.PrincipalStatus
		wantErr error
	}{
		{"suspended", models.StatusSuspended, models.ErrAccountSuspended},
		{"inactive", models.StatusInactive, models.ErrAccountDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewTestPrincipal("alice", alicePassword)
			p.Status = tt.status
			f := newAuthFixture(p)

			_, err := f.svc.Login(context.Background(), "alice", alicePassword)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, models.ErrForbidden)
			assert.Empty(t, f.tokens.byHash)

			_, err = f.svc.Login(context.Background(), "alice", "bad")
			assert.ErrorIs(t, err, models.ErrUnauthorized)
			assert.Equal(t, 1, f.principals.get(p.ID).FailedLoginAttempts)
		})
	}
}

func TestAuthService_Login_ConcurrentFailuresCountExactly(t *testing.T) {
	alice := NewTestPrincipal("alice", alicePassword)
	f := newAuthFixture(alice)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Login(context.Background(), "alice", "bad")
			assert.Error(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, f.principals.get(alice.ID).FailedLoginAttempts)
	assert.Equal(t, 1, f.notifier.Calls())
}

// ============================================================================
// Refresh and revoke
// ============================================================================

func TestAuthService_Refresh_Rotates(t *testing.T) {
	alice := NewTestPrincipal("alice", alicePassword)
	f := newAuthFixture(alice)
	ctx := context.Background()

	first, err := f.svc.Login(ctx, "alice", alicePassword)
	require.NoError(t, err)

	second, err := f.svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	old, err := f.tokens.GetByHash(ctx, auth.HashRefreshToken(first.RefreshToken))
	require.NoError(t, err)
	require.NotNil(t, old.RevokedAt)
	assert.Equal(t, models.RevokeReasonRotated, *old.RevokedReason)
	require.NotNil(t, old.ReplacedByID)

	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.svc.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.tokens.active(alice.ID, f.clock.Now()))
}

func TestAuthService_Refresh_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown token", func(t *testing.T) {
		f := newAuthFixture()
		_, err := f.svc.Refresh(ctx, "nope")
		assert.ErrorIs(t, err, models.ErrUnauthorized)

		_, err = f.svc.Refresh(ctx, "  ")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newAuthFixture(NewTestPrincipal("alice", alicePassword))
		s, err := f.svc.Login(ctx, "alice", alicePassword)
		require.NoError(t, err)

		f.clock.Advance(8 * 24 * time.Hour)
		_, err = f.svc.Refresh(ctx, s.RefreshToken)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("owner suspended", func(t *testing.T) {
		alice := NewTestPrincipal("alice", alicePassword)
		f := newAuthFixture(alice)
		s, err := f.svc.Login(ctx, "alice", alicePassword)
		require.NoError(t, err)

		_, err = f.principals.UpdateStatus(ctx, alice.ID, models.StatusSuspended, f.clock.Now(), "")
		require.NoError(t, err)
		_, err = f.svc.Refresh(ctx, s.RefreshToken)
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("owner missing", func(t *testing.T) {
		f := newAuthFixture()
		raw, err := auth.GenerateRefreshToken()
		require.NoError(t, err)
		require.NoError(t, f.tokens.Create(ctx, &models.RefreshToken{
			ID:          uuid.New(),
			PrincipalID: uuid.New(),
			TokenHash:   auth.HashRefreshToken(raw),
			IssuedAt:    f.clock.Now(),
			ExpiresAt:   f.clock.Now().Add(time.Hour),
		}))

		_, err = f.svc.Refresh(ctx, raw)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("lost rotation race", func(t *testing.T) {
		f := newAuthFixture(NewTestPrincipal("alice", alicePassword))
		s, err := f.svc.Login(ctx, "alice", alicePassword)
		require.NoError(t, err)

		f.tokens.RotateErr = models.ErrUnauthorized
		_, err = f.svc.Refresh(ctx, s.RefreshToken)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})
}

func TestAuthService_Revoke(t *testing.T) {
	f := newAuthFixture(NewTestPrincipal("alice", alicePassword))
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Revoke(ctx, "unknown"), models.ErrNotFound)

	s, err := f.svc.Login(ctx, "alice", alicePassword)
	require.NoError(t, err)

	require.NoError(t, f.svc.Revoke(ctx, s.RefreshToken))
	require.NoError(t, f.svc.Revoke(ctx, s.RefreshToken))

	stored, err := f.tokens.GetByHash(ctx, auth.HashRefreshToken(s.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, models.RevokeReasonLogout, *stored.RevokedReason)

	_, err = f.svc.Refresh(ctx, s.RefreshToken)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

// ============================================================================
// ChangePassword
// ============================================================================

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("requires principal", func(t *testing.T) {
		f := newAuthFixture()
		assert.ErrorIs(t, f.svc.ChangePassword(ctx, uuid.Nil, "a", "b"), models.ErrUnauthorized)
		assert.ErrorIs(t, f.svc.ChangePassword(ctx, uuid.New(), "a", "b"), models.ErrUnauthorized)
	})

	t.Run("wrong current password", func(t *testing.T) {
		alice := NewTestPrincipal("alice", alicePassword)
		f := newAuthFixture(alice)
		err := f.svc.ChangePassword(ctx, alice.ID, "Wr0ng!Pass", "N3w!Passw0rd")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("weak new password", func(t *testing.T) {
		alice := NewTestPrincipal("alice", alicePassword)
		f := newAuthFixture(alice)
		err := f.svc.ChangePassword(ctx, alice.ID, alicePassword, "short")

		var ve *models.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.ErrorIs(t, err, models.ErrBadRequest)
		assert.NotEmpty(t, ve.Fields["newPassword"])
	})

	t.Run("same password", func(t *testing.T) {
		alice := NewTestPrincipal("alice", alicePassword)
		f := newAuthFixture(alice)
		err := f.svc.ChangePassword(ctx, alice.ID, alicePassword, alicePassword)
		assert.ErrorIs(t, err, models.ErrBadRequest)
	})

	t.Run("success keeps sessions by default", func(t *testing.T) {
		alice := NewTestPrincipal("alice", alicePassword)
		f := newAuthFixture(alice)
		s, err := f.svc.Login(ctx, "alice", alicePassword)
		require.NoError(t, err)

		require.NoError(t, f.svc.ChangePassword(ctx, alice.ID, alicePassword, "N3w!Passw0rd"))

		_, err = f.svc.Login(ctx, "alice", alicePassword)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
		_, err = f.svc.Login(ctx, "alice", "N3w!Passw0rd")
		assert.NoError(t, err)

		_, err = f.svc.Refresh(ctx, s.RefreshToken)
		assert.NoError(t, err)
		assert.NotNil(t, f.principals.get(alice.ID).PasswordChangedAt)
	})

	t.Run("revokes sessions when configured", func(t *testing.T) {
		alice := NewTestPrincipal("alice", alicePassword)
		f := newAuthFixture(alice)
		f.svc.policy.RevokeSessionsOnPasswordChange = true
		s, err := f.svc.Login(ctx, "alice", alicePassword)
		require.NoError(t, err)

		require.NoError(t, f.svc.ChangePassword(ctx, alice.ID, alicePassword, "N3w!Passw0rd"))

		_, err = f.svc.Refresh(ctx, s.RefreshToken)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
		assert.Zero(t, f.tokens.active(alice.ID, f.clock.Now()))
	})

	t.Run("failed revocation keeps the old password", func(t *testing.T) {
		alice := NewTestPrincipal("alice", alicePassword)
		f := newAuthFixture(alice)
		f.svc.policy.RevokeSessionsOnPasswordChange = true
		_, err := f.svc.Login(ctx, "alice", alicePassword)
		require.NoError(t, err)
		f.tokens.RevokeAllErr = errors.New("connection reset")

		err = f.svc.ChangePassword(ctx, alice.ID, alicePassword, "N3w!Passw0rd")
		assert.ErrorIs(t, err, models.ErrInternalServer)

		got := f.principals.get(alice.ID)
		assert.Equal(t, alice.PasswordHash, got.PasswordHash)
		assert.Nil(t, got.PasswordChangedAt)
		assert.Equal(t, 1, f.tokens.active(alice.ID, f.clock.Now()))

		f.tokens.RevokeAllErr = nil
		_, err = f.svc.Login(ctx, "alice", alicePassword)
		assert.NoError(t, err)
	})
}

// ============================================================================
// End to end
// ============================================================================

func TestAuthService_AliceScenario(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	principals := NewPrincipalService(f.principals, testHasher(), f.svc.logger, testLogger())

	created, err := principals.Create(ctx, CreatePrincipalInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: alicePassword,
	})
	require.NoError(t, err)

	session, err := f.svc.Login(ctx, "alice", alicePassword)
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)

	for range 5 {
		_, err := f.svc.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, models.ErrUnauthorized)
	}

	_, err = f.svc.Login(ctx, "alice", alicePassword)
	require.ErrorIs(t, err, models.ErrForbidden)
	assert.Contains(t, err.Error(), "locked")

	f.clock.Advance(30 * time.Minute)

	_, err = f.svc.Login(ctx, "alice", alicePassword)
	require.NoError(t, err)
	assert.Zero(t, f.principals.get(created.ID).FailedLoginAttempts)
}
