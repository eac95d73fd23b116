package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Save creates or updates a user
	Save(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDs finds users by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)

	// FindByUserName finds a user by username
	FindByUserName(ctx context.Context, userName string) (*User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByOIDC finds a user by OpenID Connect issuer and subject
	FindByOIDC(ctx context.Context, issuer, subject string) (*User, error)

	// FindAll returns users matching the filter with pagination
	FindAll(ctx context.Context, filter UserFilter) ([]User, int64, error)

	// ExistsByUserName checks if a username already exists
	ExistsByUserName(ctx context.Context, userName string) (bool, error)

	// ExistsByEmail checks if an email already exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TokenRepository persists personal access tokens
type TokenRepository interface {
	// Save stores a token
	Save(ctx context.Context, token *PersonalAccessToken) error

	// FindByUser lists the tokens of a user
	FindByUser(ctx context.Context, userID uuid.UUID) ([]PersonalAccessToken, error)

	// FindByEncodedSecret finds the token with the given encoded secret
	FindByEncodedSecret(ctx context.Context, encoded string) (*PersonalAccessToken, error)

	// Delete removes a token of a user
	Delete(ctx context.Context, userID, tokenID uuid.UUID) error
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	// Search keyword for username, email, or full name
	Keyword string

	// Filter by status
	Status *UserStatus

	// Pagination
	Page     int
	PageSize int
}

// NewUserFilter creates a new UserFilter with default values
func NewUserFilter() UserFilter {
	return UserFilter{
		Page:     1,
		PageSize: 20,
	}
}

// WithKeyword sets the search keyword
func (f UserFilter) WithKeyword(keyword string) UserFilter {
	f.Keyword = keyword
	return f
}

// WithStatus sets the status filter
func (f UserFilter) WithStatus(status UserStatus) UserFilter {
	f.Status = &status
	return f
}

// Offset returns the offset for pagination
func (f UserFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the limit for pagination
func (f UserFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
