package main

import "github.com/katuripu/katuripu/backend/database"

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrate() error {
	if err := migrateFunc(cli.db); err != nil {
		return err
	}
	cli.log.Info("database migrated")
	return nil
}
