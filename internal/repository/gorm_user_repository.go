package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"profilehub/internal/model"
)

const techStackElementMatch = "EXISTS (SELECT 1 FROM JSON_TABLE(tech_stack, '$[*]' " +
	"COLUMNS (v VARCHAR(255) PATH '$')) AS jt WHERE LOWER(jt.v) LIKE ?)"

var profileFields = []string{
	"Name", "Location", "FieldOfInterest", "TechStack", "Seeking",
	"Bio", "GithubURL", "TwitterURL", "WebsiteURL", "LinkedinURL", "UpdatedAt",
}

// GormUserRepository stores users in a relational table. List fields are kept
// as JSON arrays; techStack matching unpacks them with JSON_TABLE so a term
// only matches inside a single element (MySQL 8.0+).
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&model.User{}); err != nil {
		return fmt.Errorf("auto migrate users failed: %w", err)
	}
	return nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &user, nil
}

func (r *GormUserRepository) Search(ctx context.Context, filter SearchFilter) ([]model.User, error) {
	f := filter.Normalize()
	query := r.db.WithContext(ctx).Model(&model.User{})
	if f.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(f.Name))
	}
	if f.TechStack != "" {
		query = query.Where(techStackElementMatch, likePattern(f.TechStack))
	}
	if f.Bio != "" {
		query = query.Where("LOWER(bio) LIKE ?", likePattern(f.Bio))
	}

	var users []model.User
	if err := query.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("search users failed: %w", err)
	}
	return users, nil
}

func (r *GormUserRepository) UpdateProfile(ctx context.Context, id string, patch model.ProfilePatch) (*model.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	user.ApplyPatch(patch)
	saved, err := r.saveProfile(ctx, user)
	if err != nil || !saved {
		return nil, err
	}
	return user, nil
}

// saveProfile reports false when the row vanished after it was read.
func (r *GormUserRepository) saveProfile(ctx context.Context, user *model.User) (bool, error) {
	result := r.db.WithContext(ctx).Model(user).Select(profileFields).Updates(user)
	if result.Error != nil {
		return false, fmt.Errorf("update user profile failed: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}
	// MySQL counts changed rows, so an unchanged row also reports zero.
	current, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return false, err
	}
	return current != nil, nil
}

func (r *GormUserRepository) SetGravatar(ctx context.Context, id, gravatarURL string) error {
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("gravatar", gravatarURL).Error; err != nil {
		return fmt.Errorf("update gravatar failed: %w", err)
	}
	return nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if result.Error != nil {
		return false, fmt.Errorf("delete user failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *GormUserRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a lower-cased "contains" pattern with LIKE wildcards escaped.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
