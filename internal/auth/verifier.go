// Package auth verifies bearer credentials for the notification core. It
// does not issue sessions; that belongs to the identity service.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredential = errors.New("invalid or expired credential")
	// ErrCredentialRevoked means the credential predates a password change
	// and must no longer be honored.
	ErrCredentialRevoked = errors.New("credential issued before password change")
)

// User is the slice of the user entity the verifier needs.
type User struct {
	ID                uuid.UUID  `db:"id"`
	Email             string     `db:"email"`
	PasswordChangedAt *time.Time `db:"password_changed_at"`
	CreatedAt         time.Time  `db:"created_at"`
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// Identity is the result of a successful verification.
type Identity struct {
	UserID   uuid.UUID
	IssuedAt time.Time
}

// Verifier checks a bearer credential: signature and expiry, user existence,
// and that the password was not rotated after the token was issued.
type Verifier struct {
	users  UserRepository
	secret string
}

func NewVerifier(users UserRepository, secret string) *Verifier {
	return &Verifier{users: users, secret: secret}
}

func (v *Verifier) Verify(ctx context.Context, credential string) (Identity, error) {
	claims, err := ParseToken(credential, v.secret)
	if err != nil {
		return Identity{}, ErrInvalidCredential
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}

	user, err := v.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return Identity{}, ErrInvalidCredential
	}
	if v.HasPasswordChangedSince(user, issuedAt) {
		return Identity{}, ErrCredentialRevoked
	}

	return Identity{UserID: user.ID, IssuedAt: issuedAt}, nil
}

// HasPasswordChangedSince reports whether the user's password was rotated
// after issuedAt. Tokens issued before a rotation are dead.
func (v *Verifier) HasPasswordChangedSince(user *User, issuedAt time.Time) bool {
	return user.PasswordChangedAt != nil && user.PasswordChangedAt.After(issuedAt)
}
