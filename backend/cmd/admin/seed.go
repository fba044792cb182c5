package main

import (
	"context"
	"fmt"
	"os"

	"github.com/katuripu/katuripu/backend/database"
)

func (cli *commandLine) seed(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	report, err := database.Seed(context.Background(), cli.db, f, cli.log)
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d subjects, %d exercises, %d roadmaps (%d roadmaps skipped)\n",
		report.Subjects, report.Exercises, report.Roadmaps, report.Skipped)
	return nil
}
