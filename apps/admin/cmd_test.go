package main

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/storage/database/gormdb"
	testutil "github.com/trezcool/shule/tests"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	db := testutil.OpenDB(t)
	usrRepo = gormdb.NewUserRepository(db)

	return &commandLine{
		db:      db,
		usrRepo: usrRepo,
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	extra   interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	origMigrateFunc := migrateFunc
	defer func() { migrateFunc = origMigrateFunc }()

	var called bool
	migrateFunc = func(db *gorm.DB) error {
		called = true
		return nil
	}

	if err := cli.run([]string{"admin", "migrate"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	if !called {
		t.Error("migrate was not invoked")
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "awe", "awe@test.cd", "mdr", false, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if errors.Cause(err) != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addAdmin(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cr#t-Pwd"), nil }

	if err := cli.run([]string{"admin", "addadmin", "-username", "root", "-email", "root@test.cd"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}

	usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Username: "root"})
	if err != nil {
		t.Fatalf("GetUser() failed, %v", err)
	}
	if !usr.IsStaff || !usr.IsActive {
		t.Errorf("addadmin created user with isStaff=%v isActive=%v", usr.IsStaff, usr.IsActive)
	}
	if err := usr.CheckPassword("s3cr#t-Pwd"); err != nil {
		t.Error("addadmin did not set the password")
	}

	// running again updates the existing account
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("0th#r-Pwd"), nil }
	if err := cli.run([]string{"admin", "addadmin", "-username", "root", "-email", "root2@test.cd"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	usr, err = usrRepo.GetUser(context.Background(), user.GetFilter{Username: "root"})
	if err != nil {
		t.Fatalf("GetUser() failed, %v", err)
	}
	if usr.Email != "root2@test.cd" {
		t.Errorf("addadmin did not update email; got %s", usr.Email)
	}
}

func Test_commandLine_linkProfile(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "teach", "teach@test.cd", "", false, true)
	teacher := testutil.CreateTeacher(t, cli.db, "Mr Cmd", nil)

	profileID := strconv.FormatUint(uint64(teacher.ID), 10)
	if err := cli.run([]string{"admin", "linkprofile", "-username", "teach", "-type", "teacher", "-profile", profileID}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}

	role, err := school.ResolveRole(context.Background(), cli.db, usr)
	if err != nil {
		t.Fatalf("ResolveRole() failed: %v", err)
	}
	if role.Kind != school.KindTeacher || role.ProfileID != teacher.ID {
		t.Errorf("ResolveRole() = %+v; want teacher %d", role, teacher.ID)
	}
}
