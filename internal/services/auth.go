package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/todos-backend/apiserver/internal/store"
	"github.com/todos-backend/apiserver/internal/token"
	"github.com/todos-backend/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers every authentication failure: unknown
// email, wrong password, or a token whose subject no longer resolves.
// Callers never learn which.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailExists is returned when signup reuses an existing email.
var ErrEmailExists = errors.New("a user with this email already exists")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, email, passwordHash string) (types.User, error)
}

// AuthService verifies credentials against the user directory and
// manages token issue and resolution.
type AuthService struct {
	users  UserRepository
	tokens *token.Service
}

func NewAuthService(users UserRepository, tokens *token.Service) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Signup hashes the password and creates the user. A duplicate email is
// detected by the storage layer's uniqueness constraint.
func (s *AuthService) Signup(ctx context.Context, email, password string) (types.User, error) {
	hashed, err := HashPassword(password)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, hashed)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return types.User{}, ErrEmailExists
		}
		return types.User{}, err
	}
	return user, nil
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password produce the same result.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken creates a bearer token with the user's email as subject.
func (s *AuthService) IssueToken(user types.User) (string, error) {
	return s.tokens.Issue(user.Email)
}

// ResolveToken validates the token and resolves its subject to a user.
// Signature validity alone is not enough; the user must still exist.
func (s *AuthService) ResolveToken(ctx context.Context, tokenString string) (types.User, error) {
	subject, err := s.tokens.Validate(tokenString)
	if err != nil {
		return types.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}
	return user, nil
}

// bcrypt only uses the first 72 bytes of its input and rejects longer
// ones outright. Truncate on both paths so passwords above that length
// still hash and verify consistently.
const maxBcryptInput = 72

// HashPassword produces a salted bcrypt hash. Hashing the same input
// twice yields different hashes.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(bcryptInput(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether the plaintext matches the hash. A
// mismatch is not an error.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password)) == nil
}

func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > maxBcryptInput {
		b = b[:maxBcryptInput]
	}
	return b
}
