package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userModel "medsync/services/medsync/internal/model/user"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("user not found")

// UserRepository is the data access layer for accounts.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) exists(ctx context.Context, column, value string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&userModel.User{}).Where(column+" = ?", value).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check %s: %w", column, err)
	}
	return n > 0, nil
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", strings.ToLower(email))
}

// Create inserts u; a unique violation comes back as gorm.ErrDuplicatedKey.
func (r *UserRepository) Create(ctx context.Context, u *userModel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// SetDisplayID back-fills the allocator output.
func (r *UserRepository) SetDisplayID(ctx context.Context, id int, displayID string) error {
	res := r.db.WithContext(ctx).Model(&userModel.User{}).Where("id = ?", id).Update("display_user_id", displayID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Delete(&userModel.User{}, id).Error
}

func (r *UserRepository) first(ctx context.Context, query string, args ...any) (*userModel.User, error) {
	var u userModel.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*userModel.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userModel.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

// GetByLogin matches login against username, then email.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*userModel.User, error) {
	return r.first(ctx, "username = ? OR email = ?", login, strings.ToLower(login))
}

// List pages through accounts, optionally filtered by name, username,
// email or display ID.
func (r *UserRepository) List(ctx context.Context, keyword string, page, pageSize int) ([]userModel.User, int64, error) {
	var (
		users []userModel.User
		total int64
	)

	query := r.db.WithContext(ctx).Model(&userModel.User{})
	if keyword != "" {
		like := "%" + strings.ToLower(keyword) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(display_user_id) LIKE ?",
			like, like, like, like,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	if err := query.Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) SetActive(ctx context.Context, id int, active bool) error {
	res := r.db.WithContext(ctx).Model(&userModel.User{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int, hash string) error {
	res := r.db.WithContext(ctx).Model(&userModel.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
