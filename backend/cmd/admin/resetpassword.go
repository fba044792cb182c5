package main

import "context"

func (cli *commandLine) resetPassword(uname, pwd string) error {
	if err := cli.users.SetPassword(context.Background(), uname, pwd); err != nil {
		return err
	}
	cli.log.Info("password reset", "username", uname)
	return nil
}
