package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl string `json:"base_url"`
	Timeout int    `json:"timeout"`
}

func write(t *testing.T, path, contents string) {
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "app.json5"), `{
		// comments are allowed
		base_url: "https://portal.example.ac.kr",
		timeout: 10,
	}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "app.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://portal.example.ac.kr", cfg.BaseUrl)
	require.Equal(t, 10, cfg.Timeout)
}

func TestLocalOverride(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "app.json5"), `{
		base_url: "https://portal.example.ac.kr",
		timeout: 10,
	}`)
	write(t, filepath.Join(dir, "app.local.json5"), `{
		base_url: "http://localhost:8080",
	}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "app.json5"))
	require.NoError(t, err)
	// local value wins, unset local fields keep the base value
	require.Equal(t, "http://localhost:8080", cfg.BaseUrl)
	require.Equal(t, 10, cfg.Timeout)
}

func TestLocalOnly(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "app.local.json5"), `{ timeout: 3 }`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "app.json5"))
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Timeout)
}

func TestMissingConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadConfig[testConfig](filepath.Join(dir, "app.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
