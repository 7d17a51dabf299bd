package school_test

import (
	"context"
	"testing"

	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/storage/database/gormdb"
	testutil "github.com/trezcool/shule/tests"
)

func TestResolveRole(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := gormdb.NewUserRepository(db)
	ctx := context.Background()

	staffAcct := testutil.CreateUser(t, repo, "staffer", "staffer@test.cd", "", false, true)
	teacherAcct := testutil.CreateUser(t, repo, "teacher", "teacher@test.cd", "", false, true)
	studentAcct := testutil.CreateUser(t, repo, "student", "student@test.cd", "", false, true)
	guardianAcct := testutil.CreateUser(t, repo, "guardian", "guardian@test.cd", "", false, true)
	flagAcct := testutil.CreateUser(t, repo, "flagadmin", "flagadmin@test.cd", "", true, true)
	noneAcct := testutil.CreateUser(t, repo, "nobody", "nobody@test.cd", "", false, true)
	multiAcct := testutil.CreateUser(t, repo, "multi", "multi@test.cd", "", false, true)

	staff := testutil.CreateStaff(t, db, "Alpha", &staffAcct.ID)
	teacher := testutil.CreateTeacher(t, db, "Bravo", &teacherAcct.ID)
	student := testutil.CreateStudent(t, db, "Charlie", &studentAcct.ID)
	guardian := testutil.CreateGuardian(t, db, "Delta", &guardianAcct.ID)

	// erroneous double link: teacher wins over guardian
	multiTeacher := testutil.CreateTeacher(t, db, "Echo", &multiAcct.ID)
	testutil.CreateGuardian(t, db, "Foxtrot", &multiAcct.ID)

	tests := []struct {
		name string
		acct user.User
		want school.Role
	}{
		{name: "staff link resolves to admin", acct: staffAcct, want: school.Role{Kind: school.KindAdmin, ProfileID: staff.ID}},
		{name: "teacher link", acct: teacherAcct, want: school.Role{Kind: school.KindTeacher, ProfileID: teacher.ID}},
		{name: "student link", acct: studentAcct, want: school.Role{Kind: school.KindStudent, ProfileID: student.ID}},
		{name: "guardian link", acct: guardianAcct, want: school.Role{Kind: school.KindGuardian, ProfileID: guardian.ID}},
		{name: "staff flag fallback", acct: flagAcct, want: school.Role{Kind: school.KindAdmin}},
		{name: "no link no flag", acct: noneAcct, want: school.Role{Kind: school.KindUnknown}},
		{name: "multiple links resolve by precedence", acct: multiAcct, want: school.Role{Kind: school.KindTeacher, ProfileID: multiTeacher.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := school.ResolveRole(ctx, db, tt.acct)
			if err != nil {
				t.Fatalf("ResolveRole() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveRole() = %+v; want %+v", got, tt.want)
			}
		})
	}
}

func TestLinkAccount(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := gormdb.NewUserRepository(db)
	ctx := context.Background()

	acct := testutil.CreateUser(t, repo, "linked", "linked@test.cd", "", false, true)
	teacher := testutil.CreateTeacher(t, db, "Golf", nil)

	if err := school.LinkAccount(ctx, db, school.KindTeacher, teacher.ID, acct.ID); err != nil {
		t.Fatalf("LinkAccount() failed: %v", err)
	}
	role, err := school.ResolveRole(ctx, db, acct)
	if err != nil {
		t.Fatalf("ResolveRole() failed: %v", err)
	}
	if want := (school.Role{Kind: school.KindTeacher, ProfileID: teacher.ID}); role != want {
		t.Errorf("ResolveRole() = %+v; want %+v", role, want)
	}

	t.Run("unknown profile", func(t *testing.T) {
		if err := school.LinkAccount(ctx, db, school.KindTeacher, 999, acct.ID); err != school.ErrNotFound {
			t.Errorf("LinkAccount() err = %v; want ErrNotFound", err)
		}
	})
	t.Run("unknown profile type", func(t *testing.T) {
		if err := school.LinkAccount(ctx, db, school.Kind("janitor"), teacher.ID, acct.ID); err == nil {
			t.Error("LinkAccount() expected an error")
		}
	})
}
