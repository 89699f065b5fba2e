package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tasktab/internal/tasktab/store"
	"github.com/aussiebroadwan/tasktab/internal/tasktab/store/drivers/sqlite"
	"github.com/aussiebroadwan/tasktab/pkg/cryptox"
	"github.com/aussiebroadwan/tasktab/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newAuthService(t *testing.T) *AuthService {
	t.Helper()

	return &AuthService{
		Store:    newTestStore(t),
		Hasher:   cryptox.NewPasswordHasher(bcrypt.MinCost),
		Tokens:   jwtx.NewSigner([]byte("test-secret"), "tasktab-test", time.Hour),
		Policy:   StrictPasswordPolicy,
		Conflict: DefaultConflictPolicy,
	}
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Str0ng!Pw",
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	s := newAuthService(t)
	ctx := context.Background()

	res, err := s.Register(ctx, validRegistration())
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.NotEmpty(t, res.UserID)
	require.Equal(t, "alice", res.Username)

	// The issued token resolves back to the new identity.
	claims, err := s.Tokens.Verify(res.Token)
	require.NoError(t, err)
	require.Equal(t, res.UserID, claims.Subject)

	// The stored record holds a hash, never the plaintext.
	u, err := s.Store.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "Str0ng!Pw", u.PasswordHash)
	require.NotContains(t, u.PasswordHash, "Str0ng!Pw")
}

func TestRegisterNormalizes(t *testing.T) {
	t.Parallel()

	s := newAuthService(t)
	ctx := context.Background()

	in := validRegistration()
	in.Username = "  alice  "
	in.Email = "Alice@Example.COM"

	res, err := s.Register(ctx, in)
	require.NoError(t, err)
	require.Equal(t, "alice", res.Username)

	u, err := s.Store.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	s := newAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		mutate     func(*RegisterInput)
		wantFields []string
	}{
		{
			name:       "short username",
			mutate:     func(in *RegisterInput) { in.Username = "ab" },
			wantFields: []string{"username"},
		},
		{
			name:       "non-alphanumeric username",
			mutate:     func(in *RegisterInput) { in.Username = "al!ce" },
			wantFields: []string{"username"},
		},
		{
			name:       "bad email",
			mutate:     func(in *RegisterInput) { in.Email = "not-an-email" },
			wantFields: []string{"email"},
		},
		{
			name:       "weak password",
			mutate:     func(in *RegisterInput) { in.Password = "alllowercase" },
			wantFields: []string{"password"},
		},
		{
			name: "every violation reported at once",
			mutate: func(in *RegisterInput) {
				in.Username = "a"
				in.Email = "nope"
				in.Password = "weak"
			},
			wantFields: []string{"username", "email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			tt.mutate(&in)

			_, err := s.Register(ctx, in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)

			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			require.ElementsMatch(t, tt.wantFields, got)
		})
	}
}

func TestRegisterRelaxedPolicy(t *testing.T) {
	t.Parallel()

	s := newAuthService(t)
	s.Policy = RelaxedPasswordPolicy
	ctx := context.Background()

	in := validRegistration()
	in.Password = "simple"

	_, err := s.Register(ctx, in)
	require.NoError(t, err)

	in.Username = "bob"
	in.Email = "bob@example.com"
	in.Password = "short"
	_, err = s.Register(ctx, in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRegisterConflict(t *testing.T) {
	t.Parallel()

	s := newAuthService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, validRegistration())
	require.NoError(t, err)

	t.Run("same email different case", func(t *testing.T) {
		in := validRegistration()
		in.Username = "alice2"
		in.Email = "ALICE@example.com"
		_, err := s.Register(ctx, in)
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("same username", func(t *testing.T) {
		in := validRegistration()
		in.Email = "fresh@example.com"
		_, err := s.Register(ctx, in)
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("username case differs under default policy", func(t *testing.T) {
		in := validRegistration()
		in.Username = "ALICE"
		in.Email = "upper@example.com"
		_, err := s.Register(ctx, in)
		require.NoError(t, err)
	})
}

func TestRegisterFoldedUsernameConflict(t *testing.T) {
	t.Parallel()

	s := newAuthService(t)
	s.Conflict.FoldUsername = true
	ctx := context.Background()

	_, err := s.Register(ctx, validRegistration())
	require.NoError(t, err)

	in := validRegistration()
	in.Username = "ALICE"
	in.Email = "upper@example.com"
	_, err = s.Register(ctx, in)
	require.ErrorIs(t, err, ErrConflict)
}

func TestRegisterRaceMapsToConflict(t *testing.T) {
	t.Parallel()

	// A duplicate that slips past the pre-check must still surface as
	// ErrConflict from the unique constraint, never an internal error.
	// Disabling the pre-check forces that path.
	s := newAuthService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, validRegistration())
	require.NoError(t, err)

	s.Conflict = ConflictPolicy{}
	in := validRegistration()
	in.Username = "alice2"
	_, err = s.Register(ctx, in)
	require.ErrorIs(t, err, ErrConflict)
}

func TestRegisterConcurrentDuplicates(t *testing.T) {
	t.Parallel()

	// All callers race for the same identity; exactly one may win and
	// every loser must see ErrConflict, never an internal error.
	s := newAuthService(t)
	ctx := context.Background()

	const callers = 8
	errs := make(chan error, callers)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(callers)
	for range callers {
		go func() {
			defer done.Done()
			start.Wait()
			_, err := s.Register(ctx, validRegistration())
			errs <- err
		}()
	}
	start.Done()
	done.Wait()
	close(errs)

	var successes, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, callers-1, conflicts)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	s := newAuthService(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, validRegistration())
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		res, err := s.Login(ctx, LoginInput{Email: "alice@example.com", Password: "Str0ng!Pw"})
		require.NoError(t, err)
		require.Equal(t, reg.UserID, res.UserID)
		require.Equal(t, "alice", res.Username)
		require.NotEmpty(t, res.Token)
	})

	t.Run("email case is normalized", func(t *testing.T) {
		_, err := s.Login(ctx, LoginInput{Email: "ALICE@example.com", Password: "Str0ng!Pw"})
		require.NoError(t, err)
	})

	t.Run("wrong password and unknown email are identical", func(t *testing.T) {
		_, wrongPw := s.Login(ctx, LoginInput{Email: "alice@example.com", Password: "Wr0ng!Pw"})
		_, noAccount := s.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "Str0ng!Pw"})

		require.ErrorIs(t, wrongPw, ErrInvalidCredentials)
		require.ErrorIs(t, noAccount, ErrInvalidCredentials)
		require.Equal(t, wrongPw, noAccount, "both failures must be the same value")
	})

	t.Run("missing fields are validation failures", func(t *testing.T) {
		_, err := s.Login(ctx, LoginInput{})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 2)
	})
}
