package main

import (
	"context"

	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/services"
)

func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	role := models.RoleUser
	if isAdmin {
		role = models.RoleAdmin
	}
	usr, err := cli.users.Register(context.Background(), services.RegisterInput{
		Username: uname,
		Email:    email,
		Password: pwd,
		Role:     role,
	})
	if err != nil {
		return err
	}
	cli.log.Info("user created", "user_id", usr.ID, "username", usr.Username, "role", usr.Role)
	return nil
}
