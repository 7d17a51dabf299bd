package gormdb

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

type userRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]uint, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	check := func(field, value string, dupErr error) error {
		if value == "" {
			return nil
		}
		q := repo.db.WithContext(ctx).Model(&user.User{}).Where(field+" = ?", value)
		if len(exclIDs) > 0 {
			q = q.Where("id NOT IN ?", exclIDs)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return errors.Wrap(err, "checking "+field+" uniqueness")
		}
		if count > 0 {
			return dupErr
		}
		return nil
	}

	if err := check("username", username, user.ErrUsernameExists); err != nil {
		return err
	}
	return check("email", email, user.ErrEmailExists)
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if err := repo.db.WithContext(ctx).Create(&usr).Error; err != nil {
		return user.User{}, repo.trapDuplicate(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	q := repo.db.WithContext(ctx)
	switch {
	case filter.ID != 0:
		q = q.Where("id = ?", filter.ID)
	case filter.Username != "":
		q = q.Where("username = ?", filter.Username)
	case filter.Email != "":
		q = q.Where("email = ?", filter.Email)
	case filter.UsernameOrEmail != "":
		q = q.Where("username = ? OR email = ?", filter.UsernameOrEmail, filter.UsernameOrEmail)
	default:
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	if err := q.First(&usr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	q := repo.db.WithContext(ctx).Model(&user.User{})

	if filter != nil && !filter.IsEmpty() {
		filter.Clean()
		if filter.Search != "" {
			s := "%" + strings.ToLower(filter.Search) + "%"
			q = q.Where(
				"LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
				s, s, s, s,
			)
		}
		if filter.IsStaff != nil {
			q = q.Where("is_staff = ?", *filter.IsStaff)
		}
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			q = q.Where("created_at >= ?", filter.CreatedFrom)
		}
		if !filter.CreatedTo.IsZero() {
			q = q.Where("created_at <= ?", filter.CreatedTo)
		}
	}

	for _, ord := range ordering {
		q = q.Order(ord.String())
	}

	var usrs []user.User
	if err := q.Find(&usrs).Error; err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return usrs, nil
}

// UpdateUser persists the non-zero fields of usr; isActive and isStaff are
// separate so a false value can still be written.
func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive, isStaff *bool) (user.User, error) {
	updates := map[string]interface{}{"updated_at": usr.UpdatedAt}
	if usr.Username != "" {
		updates["username"] = usr.Username
	}
	if usr.Email != "" {
		updates["email"] = usr.Email
	}
	if usr.FirstName != "" {
		updates["first_name"] = usr.FirstName
	}
	if usr.LastName != "" {
		updates["last_name"] = usr.LastName
	}
	if len(usr.PasswordHash) > 0 {
		updates["password_hash"] = usr.PasswordHash
	}
	if !usr.LastLogin.IsZero() {
		updates["last_login"] = usr.LastLogin
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	if isStaff != nil {
		updates["is_staff"] = *isStaff
	}

	res := repo.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", usr.ID).Updates(updates)
	if res.Error != nil {
		return user.User{}, repo.trapDuplicate(res.Error, "updating user")
	}
	if res.RowsAffected == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := repo.db.WithContext(ctx).Delete(&user.User{}, ids).Error
	return errors.Wrap(err, "deleting users")
}

func (repo *userRepository) trapDuplicate(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return core.NewValidationError(errors.New("username or email already in use"))
	}
	return errors.Wrap(err, msg)
}
