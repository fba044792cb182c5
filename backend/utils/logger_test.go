package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedact(t *testing.T) {
	in := []interface{}{"user_id", 7, "password", "hunter2", "jwt_token", "abc", "dangling"}
	out := redact(in)

	assert.Equal(t, []interface{}{"user_id", 7, "password", "[REDACTED]", "jwt_token", "[REDACTED]", "dangling"}, out)
	assert.Equal(t, "hunter2", in[3], "input must not be mutated")
}

func TestInitLogger(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "test"} {
		l, err := InitLogger(mode)
		require.NoError(t, err, mode)
		l.With("component", "test").Debug("hello", "password", "x")
	}
}
