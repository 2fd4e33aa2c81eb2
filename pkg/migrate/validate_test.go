package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestValidateDirCollectsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20260101000000_ok.sql", "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")
	writeFile(t, dir, "20260101000000_dup.sql", "-- +goose Up\n-- +goose Down\n")
	writeFile(t, dir, "bad-name.sql", "")
	writeFile(t, dir, "20260102000000_reversed.sql", "-- +goose Down\n-- +goose Up\n")
	writeFile(t, dir, "README.md", "ignored")

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 3)
}

func TestCreateAtRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	path, err := createAt(dir, "  Seed staff  ", now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20260301090000_seed_staff.sql"), path)
	require.NoError(t, ValidateDir(dir))

	_, err = createAt(dir, "seed staff", now)
	require.ErrorIs(t, err, fs.ErrExist)
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	require.NoError(t, err)
	inBinary, err := fs.Glob(embedded, "migrations/*.sql")
	require.NoError(t, err)
	require.Len(t, inBinary, len(onDisk))
}
