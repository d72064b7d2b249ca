package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docprint/internal/codec"
	"docprint/internal/printer"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(LoadOptions{StartDir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, cfg.Path)

	opts, err := cfg.PrintOptions()
	require.NoError(t, err)
	assert.Equal(t, printer.DefaultOptions(), opts)
}

func TestLoad_FindsFileInParent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), `
[print]
print_width = 40
use_tabs = true
end_of_line = "crlf"

[input]
format = "yaml"
validate = true
`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Load(LoadOptions{StartDir: nested})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), cfg.Path)

	opts, err := cfg.PrintOptions()
	require.NoError(t, err)
	assert.Equal(t, 40, opts.PrintWidth)
	assert.Equal(t, printer.DefaultTabWidth, opts.TabWidth)
	assert.True(t, opts.UseTabs)
	assert.Equal(t, printer.EndOfLineCRLF, opts.EndOfLine)

	f, err := cfg.InputFormat()
	require.NoError(t, err)
	assert.Equal(t, codec.FormatYAML, f)
	assert.True(t, cfg.DecodeOptions().Validate)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "custom.toml")
	writeFile(t, path, "[print]\nprint_width = 40\ntab_width = 8\n")

	t.Setenv("DOCPRINT_PRINT_WIDTH", "100")
	t.Setenv("DOCPRINT_END_OF_LINE", "cr")

	cfg, err := Load(LoadOptions{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Print.PrintWidth)
	assert.Equal(t, 8, cfg.Print.TabWidth)
	assert.Equal(t, "cr", cfg.Print.EndOfLine)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "DOCPRINT_TAB_WIDTH=4\nDOCPRINT_INPUT_NORMALIZE=true\n")

	// registered so the values godotenv sets are restored afterwards
	t.Setenv("DOCPRINT_TAB_WIDTH", "")
	t.Setenv("DOCPRINT_INPUT_NORMALIZE", "")
	require.NoError(t, os.Unsetenv("DOCPRINT_TAB_WIDTH"))
	require.NoError(t, os.Unsetenv("DOCPRINT_INPUT_NORMALIZE"))

	cfg, err := Load(LoadOptions{StartDir: dir, EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Print.TabWidth)
	assert.True(t, cfg.Input.Normalize)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	_, err := Load(LoadOptions{StartDir: t.TempDir(), EnvFile: filepath.Join(t.TempDir(), "absent.env")})
	assert.ErrorContains(t, err, "env file")
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "[print]\nprint_wdth = 40\n")

	_, err := Load(LoadOptions{StartDir: root})
	assert.ErrorContains(t, err, "print.print_wdth")
}

func TestLoad_InvalidValues(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "[print]\nend_of_line = \"nl\"\n")

	_, err := Load(LoadOptions{StartDir: root})
	assert.ErrorIs(t, err, printer.ErrInvalidOptions)

	writeFile(t, filepath.Join(root, FileName), "[input]\nformat = \"toml\"\n")
	_, err = Load(LoadOptions{StartDir: root})
	assert.ErrorIs(t, err, codec.ErrUnknownFormat)
}

func TestFind_NotFound(t *testing.T) {
	_, ok, err := Find(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
}
