package main

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

// linkProfile attaches the account to a profile row, giving it its role.
func (cli *commandLine) linkProfile(uname, profileType string, profileID uint) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: uname})
	if err != nil {
		return err
	}

	kind := school.Kind(core.CleanString(profileType, true /* lower */))
	return school.LinkAccount(ctx, cli.db, kind, profileID, usr.ID)
}
