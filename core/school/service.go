package school

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/shule/core"
)

// Service is the record service: every operation authenticates nothing by
// itself (the transport does that) but re-checks the caller's tier and scopes
// every query to the caller's visible rows.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// DB exposes the underlying handle for role resolution and tests.
func (svc *Service) DB() *gorm.DB { return svc.db }

func (svc *Service) query(ctx context.Context, scope func(*gorm.DB) *gorm.DB, ordering []core.DBOrdering) *gorm.DB {
	db := svc.db.WithContext(ctx).Scopes(scope)
	for _, ord := range ordering {
		db = db.Order(ord.String())
	}
	return db
}

// checkUnique pre-checks a unique column so collisions surface as field
// errors; the DB constraint stays as the backstop for races.
func (svc *Service) checkUnique(ctx context.Context, model interface{}, field, value string, excludeID uint) error {
	if value == "" {
		return nil
	}
	q := svc.db.WithContext(ctx).Model(model).Where(fmt.Sprintf("%s = ?", field), value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return errors.Wrapf(err, "checking %s uniqueness", field)
	}
	if count > 0 {
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: "this value is already in use"})
	}
	return nil
}

// checkExists validates that a referenced row exists before writing a FK to it.
func (svc *Service) checkExists(ctx context.Context, model interface{}, id uint, field string) error {
	var count int64
	if err := svc.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return errors.Wrapf(err, "checking %s existence", field)
	}
	if count == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: "no such record"})
	}
	return nil
}

// collect loads the rows behind an ID list into dest (a *[]T); unknown ids
// are a field error, not a silent drop.
func (svc *Service) collect(ctx context.Context, ids []uint, dest interface{}, field string) error {
	if len(ids) == 0 {
		return nil
	}
	res := svc.db.WithContext(ctx).Where("id IN ?", ids).Find(dest)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "collecting %s", field)
	}
	if int(res.RowsAffected) != len(ids) {
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: "unknown or duplicate ids"})
	}
	return nil
}

// trapNotFound maps gorm's "no rows" to ErrNotFound; a missing row and an
// out-of-scope row look the same to the caller.
func trapNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// trapDuplicate maps a unique-index race to a field-less validation error.
func trapDuplicate(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return core.NewValidationError(errors.New("duplicate value for a unique field"))
	}
	return errors.Wrap(err, msg)
}
