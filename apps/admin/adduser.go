package main

import (
	"context"

	"github.com/chapa-studio/chapa/core"
	"github.com/chapa-studio/chapa/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr, err = cli.usrRepo.GetUserByEmail(ctx, email)
		if err != nil && err != user.ErrNotFound {
			return err
		}
	}

	if isAdmin {
		usr.Roles = user.AllRoles
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	isActive := true
	if usr.ID == "" {
		usr.Name = uname
		usr.Username = uname
		usr.Email = email
		usr.IsActive = true
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}
	usr.Username = uname
	usr.Email = email
	_, err = cli.usrRepo.UpdateUser(ctx, usr, &isActive)
	return err
}
