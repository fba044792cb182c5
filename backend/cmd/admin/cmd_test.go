package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/testutil"
)

func setup(t *testing.T) (*commandLine, *gorm.DB) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &commandLine{db: db, users: services.NewUserService(db, log), log: log}, db
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func mockPassword(t *testing.T, pwd string) {
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

func Test_commandLine_help(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command"},
		{name: "unknown command", args: []string{"lol"}},
		{name: "adduser without flags", args: []string{"adduser"}},
		{name: "adduser without email", args: []string{"adduser", "-username", "amina"}},
		{name: "adduser without password", args: []string{"adduser", "-username", "amina", "-email", "amina@test.ma"}},
		{name: "resetpassword without flags", args: []string{"resetpassword"}},
		{name: "seed without file", args: []string{"seed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(t, tt.pwd)
			err := cli.run(append([]string{"admin"}, tt.args...))
			assert.ErrorIs(t, err, errHelp)
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, db := setup(t)

	mockPassword(t, "s3cretpass")
	require.NoError(t, cli.run([]string{"admin", "adduser", "-username", "root", "-email", "root@test.ma", "-admin"}))
	require.NoError(t, cli.run([]string{"admin", "adduser", "-username", "amina", "-email", "amina@test.ma"}))

	var root, amina models.User
	require.NoError(t, db.Where("username = ?", "root").First(&root).Error)
	require.NoError(t, db.Where("username = ?", "amina").First(&amina).Error)
	assert.Equal(t, models.RoleAdmin, root.Role)
	assert.Equal(t, models.RoleUser, amina.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(root.PasswordHash), []byte("s3cretpass")))

	err := cli.run([]string{"admin", "adduser", "-username", "amina", "-email", "other@test.ma"})
	assert.ErrorIs(t, err, services.ErrConflict)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, db := setup(t)
	usr := testutil.SeedUser(t, db, "awe", models.RoleUser)

	tests := []cliTest{
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, pwd: "lol", wantErr: services.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, pwd: "newpass1"},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, pwd: "newpass2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(t, tt.pwd)
			err := cli.run(append([]string{"admin"}, tt.args...))
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			var refreshed models.User
			require.NoError(t, db.First(&refreshed, usr.ID).Error)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(refreshed.PasswordHash), []byte(tt.pwd)))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	called := false
	orig := migrateFunc
	migrateFunc = func(db *gorm.DB) error {
		called = true
		return nil
	}
	t.Cleanup(func() { migrateFunc = orig })

	require.NoError(t, cli.run([]string{"admin", "migrate"}))
	assert.True(t, called)
}

func Test_commandLine_seed(t *testing.T) {
	cli, db := setup(t)

	require.NoError(t, cli.run([]string{"admin", "seed", "-file", "../../../seed/roadmaps.yaml"}))

	var roadmaps int64
	require.NoError(t, db.Model(&models.Roadmap{}).Count(&roadmaps).Error)
	assert.Equal(t, int64(2), roadmaps)

	err := cli.run([]string{"admin", "seed", "-file", "missing.yaml"})
	assert.Error(t, err)
}
