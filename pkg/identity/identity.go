package identity

import (
	"context"
)

// User is the identity handed back to callers. Credential material never
// leaves this package.
type User struct {
	ID    string
	Email string
}

// Directory is the identity collaborator the authenticators consume. Absence
// is reported through the boolean, never through an error; errors are
// reserved for backend failures.
type Directory interface {
	FindUserByEmail(ctx context.Context, email string) (User, bool, error)
	FindUserByID(ctx context.Context, id string) (User, bool, error)
	VerifyPassword(ctx context.Context, user User, password string) (bool, error)
}
