package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbscheck/internal/profile"
)

func TestProfileCommand_Defaults(t *testing.T) {
	out, err := execute(t, "profile")
	require.NoError(t, err)

	assert.Contains(t, out, "trials         1000")
	assert.Contains(t, out, "min_catalog    10000")
	assert.Contains(t, out, "min_displayed  500")
	assert.Contains(t, out, "max_attempts   1000")
	assert.Contains(t, out, "The Godfather")
	assert.Contains(t, out, "Fist of Fury")
}

func TestProfileCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relaxed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trials: 50\nmin_displayed: 25\n"), 0o644))

	out, err := execute(t, "profile", "--profile", path)
	require.NoError(t, err)

	assert.Contains(t, out, "trials         50")
	assert.Contains(t, out, "min_displayed  25")
	// Keys the file omits keep their defaults
	assert.Contains(t, out, "min_catalog    10000")
}

func TestProfileCommand_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trials: -5\n"), 0o644))

	_, err := execute(t, "profile", "--profile", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid profile")
}

func TestProfileCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "profile", "--profile", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestProfileCommand_JSON(t *testing.T) {
	out, err := execute(t, "profile", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   profile.Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, profile.Default(), resp.Data)
}
