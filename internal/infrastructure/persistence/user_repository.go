package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/identity"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Save creates or updates a user
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return saveVersioned(r.db.WithContext(ctx), models.UserModelFromDomain(user), user)
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds users by their IDs
func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.User, error) {
	if len(ids) == 0 {
		return []identity.User{}, nil
	}
	var userModels []models.UserModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("user_name ASC").Find(&userModels).Error; err != nil {
		return nil, err
	}
	return usersToDomain(userModels), nil
}

// FindByUserName finds a user by username, ignoring case
func (r *GormUserRepository) FindByUserName(ctx context.Context, userName string) (*identity.User, error) {
	return r.findOne(ctx, "LOWER(user_name) = ?", strings.ToLower(strings.TrimSpace(userName)))
}

// FindByEmail finds a user by email, ignoring case
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	if email == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

// FindByOIDC finds a user by OpenID Connect issuer and subject
func (r *GormUserRepository) FindByOIDC(ctx context.Context, issuer, subject string) (*identity.User, error) {
	if issuer == "" || subject == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "oidc_issuer = ? AND oidc_id = ?", issuer, subject)
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, args ...any) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns users matching the filter with pagination
func (r *GormUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]identity.User, int64, error) {
	var userModels []models.UserModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.UserModel{})
	if filter.Keyword != "" {
		pattern := likePattern(filter.Keyword)
		query = query.Where(
			`LOWER(user_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(full_name) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("user_name ASC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&userModels).Error; err != nil {
		return nil, 0, err
	}
	return usersToDomain(userModels), total, nil
}

// ExistsByUserName checks if a username already exists
func (r *GormUserRepository) ExistsByUserName(ctx context.Context, userName string) (bool, error) {
	return r.exists(ctx, "LOWER(user_name) = ?", strings.ToLower(strings.TrimSpace(userName)))
}

// ExistsByEmail checks if an email already exists
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *GormUserRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where(query, args...).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func usersToDomain(userModels []models.UserModel) []identity.User {
	users := make([]identity.User, len(userModels))
	for i := range userModels {
		users[i] = *userModels[i].ToDomain()
	}
	return users
}

// GormTokenRepository implements TokenRepository using GORM
type GormTokenRepository struct {
	db *gorm.DB
}

// NewGormTokenRepository creates a new GormTokenRepository
func NewGormTokenRepository(db *gorm.DB) *GormTokenRepository {
	return &GormTokenRepository{db: db}
}

// Save stores a token
func (r *GormTokenRepository) Save(ctx context.Context, token *identity.PersonalAccessToken) error {
	return translateError(r.db.WithContext(ctx).Save(models.PersonalAccessTokenModelFromDomain(token)).Error)
}

// FindByUser lists the tokens of a user, newest first
func (r *GormTokenRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]identity.PersonalAccessToken, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC"))
}

// FindByEncodedSecret finds a token by its encoded secret
func (r *GormTokenRepository) FindByEncodedSecret(ctx context.Context, encoded string) (*identity.PersonalAccessToken, error) {
	var model models.PersonalAccessTokenModel
	if err := r.db.WithContext(ctx).First(&model, "encoded_secret = ?", encoded).Error; err != nil {
		return nil, notFound(err)
	}
	token := model.ToDomain()
	return &token, nil
}

// Delete removes a token of a user
func (r *GormTokenRepository) Delete(ctx context.Context, userID, tokenID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", tokenID, userID).
		Delete(&models.PersonalAccessTokenModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormTokenRepository) find(query *gorm.DB) ([]identity.PersonalAccessToken, error) {
	var rows []models.PersonalAccessTokenModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	tokens := make([]identity.PersonalAccessToken, len(rows))
	for i := range rows {
		tokens[i] = rows[i].ToDomain()
	}
	return tokens, nil
}
