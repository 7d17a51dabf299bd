package school

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// Kind is the effective role of an authenticated account.
type Kind string

const (
	KindUnknown  Kind = "unknown"
	KindAdmin    Kind = "admin"
	KindTeacher  Kind = "teacher"
	KindStudent  Kind = "student"
	KindGuardian Kind = "guardian"
)

// Role is an account's resolved role together with the linked profile PK.
// ProfileID is zero for Unknown and for Admins granted by the account flag.
type Role struct {
	Kind      Kind `json:"kind"`
	ProfileID uint `json:"profile_id,omitempty"`
}

func (r Role) Known() bool { return r.Kind != KindUnknown }

// Principal is the authenticated account making a request, with its role
// resolved once up front.
type Principal struct {
	Account user.User
	Role    Role
}

// roleProbes fixes the resolution precedence: an account erroneously linked
// to several profiles always resolves to the earliest-listed role.
var roleProbes = []struct {
	kind  Kind
	model interface{}
}{
	{KindAdmin, &StaffMember{}},
	{KindTeacher, &Teacher{}},
	{KindStudent, &Student{}},
	{KindGuardian, &Guardian{}},
}

// ResolveRole determines the effective role of an account: the first profile
// table holding a link to it wins; the account's staff flag is the Admin
// fallback for accounts with no profile at all.
func ResolveRole(ctx context.Context, db *gorm.DB, acct user.User) (Role, error) {
	for _, p := range roleProbes {
		var ids []uint
		err := db.WithContext(ctx).Model(p.model).Where("account_id = ?", acct.ID).Limit(1).Pluck("id", &ids).Error
		if err != nil {
			return Role{}, errors.Wrapf(err, "probing %s link", p.kind)
		}
		if len(ids) > 0 {
			return Role{Kind: p.kind, ProfileID: ids[0]}, nil
		}
	}
	if acct.IsStaff {
		return Role{Kind: KindAdmin}, nil
	}
	return Role{Kind: KindUnknown}, nil
}

// LinkAccount provisions the 1:1 link between a profile row and an account.
// A profile already holding another account, or an account already linked to
// a profile of the same type, trips the column's unique index.
func LinkAccount(ctx context.Context, db *gorm.DB, kind Kind, profileID, accountID uint) error {
	var model interface{}
	switch kind {
	case KindAdmin:
		model = &StaffMember{}
	case KindTeacher:
		model = &Teacher{}
	case KindStudent:
		model = &Student{}
	case KindGuardian:
		model = &Guardian{}
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "profile_type", Error: "unknown profile type"})
	}

	res := db.WithContext(ctx).Model(model).Where("id = ?", profileID).Update("account_id", accountID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return core.NewValidationError(res.Error, core.FieldError{Field: "account_id", Error: "this account is already linked to such a profile"})
		}
		return errors.Wrap(res.Error, "linking account")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
