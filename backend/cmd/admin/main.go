package main

import (
	"log"
	"os"

	"github.com/katuripu/katuripu/backend/config"
	"github.com/katuripu/katuripu/backend/database"
	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	logger, err := utils.InitLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}

	db, err := database.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Error initializing database", "error", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Error getting database handle", "error", err)
	}

	cli := commandLine{
		db:    db,
		users: services.NewUserService(db, logger),
		log:   logger,
	}
	err = cli.run(os.Args)
	_ = sqlDB.Close()
	logger.Sync()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", "error", err)
		}
		os.Exit(1)
	}
}
