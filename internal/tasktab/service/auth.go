package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/aussiebroadwan/tasktab/internal/tasktab/domain"
	"github.com/aussiebroadwan/tasktab/internal/tasktab/store"
	"github.com/aussiebroadwan/tasktab/pkg/cryptox"
	"github.com/aussiebroadwan/tasktab/pkg/idx"
	"github.com/aussiebroadwan/tasktab/pkg/jwtx"
	"github.com/aussiebroadwan/tasktab/pkg/slogx"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterInput is the registration payload. Username and email are
// normalized (trim, lowercase email) before these rules run.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email"    validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,max=100"`
}

// AuthResult is what both Register and Login hand back on success. It
// never carries the password or its hash.
type AuthResult struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// AuthService orchestrates registration and login. It is the only
// component that creates identities and issues tokens.
type AuthService struct {
	Store    store.Store
	Hasher   cryptox.PasswordHasher
	Tokens   *jwtx.Signer
	Policy   PasswordPolicy
	Conflict ConflictPolicy

	dummyOnce sync.Once
	dummy     string
}

// Register validates input, creates the identity and issues a token.
//
// The duplicate pre-check does not close the race with a concurrent
// registration; the store's uniqueness violation on insert does, and is
// translated to ErrConflict rather than surfacing as an internal error.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	fields := collectFieldErrors(validate.Struct(in))
	if in.Password != "" {
		fields = append(fields, s.Policy.Check(in.Password)...)
	}
	if err := validationError(fields); err != nil {
		return AuthResult{}, err
	}

	checkEmail, checkUsername := in.Email, in.Username
	if !s.Conflict.Email {
		checkEmail = ""
	}
	if !s.Conflict.Username {
		checkUsername = ""
	}
	exists, err := s.Store.Users().ExistsByEmailOrUsername(
		ctx, checkEmail, checkUsername, s.Conflict.FoldUsername)
	if err != nil {
		return AuthResult{}, err
	}
	if exists {
		return AuthResult{}, ErrConflict
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	now := nowUTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost the race to a concurrent registration.
			return AuthResult{}, ErrConflict
		}
		return AuthResult{}, err
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", user.ID)

	return s.issue(user)
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password converge on one failure path: a bcrypt comparison always runs
// (against a throwaway hash when the account is absent) and the result is
// always ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	in.Email = normalizeEmail(in.Email)

	if err := validationError(collectFieldErrors(validate.Struct(in))); err != nil {
		return AuthResult{}, err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, in.Email)
	found := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return AuthResult{}, err
	}

	hash := s.dummyHash()
	if found {
		hash = user.PasswordHash
	}
	if !s.Hasher.Verify(in.Password, hash) || !found {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user domain.User) (AuthResult, error) {
	token, err := s.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, UserID: user.ID, Username: user.Username}, nil
}

// dummyHash is compared against when no account matches the email, so a
// login attempt costs one bcrypt verification either way.
func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummy, _ = s.Hasher.Hash("tasktab-no-such-account")
	})
	return s.dummy
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// collectFieldErrors flattens validator output into {field, msg} pairs,
// one per violated field, with messages phrased for end users.
func collectFieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Msg: "invalid request body"}}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		fields = append(fields, FieldError{Field: field, Msg: fieldMessage(field, fe.Tag())})
	}
	return fields
}

func fieldMessage(field, tag string) string {
	switch field {
	case "username":
		switch tag {
		case "required":
			return "username is required"
		case "min", "max":
			return "username must be 3-30 characters"
		case "alphanum":
			return "username must contain only letters and numbers"
		}
	case "email":
		if tag == "max" {
			return "email must be less than 100 characters"
		}
		return "valid email required"
	case "password":
		if tag == "max" {
			return "password must be less than 100 characters"
		}
		return "password is required"
	}
	return "invalid " + field
}
