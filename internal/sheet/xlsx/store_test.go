package xlsx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JakeFAU/prosettings-sheet/internal/profile"
)

func newWorkbook(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pro players.xlsx")
	require.NoError(t, Generate(path))
	s, err := New(path)
	require.NoError(t, err)
	return s
}

func TestNewRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := New(" ")
	require.Error(t, err)
}

func TestLoadMissingWorkbook(t *testing.T) {
	t.Parallel()

	s, err := New(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.NoError(t, err)
	_, err = s.Load(context.Background())
	require.ErrorIs(t, err, ErrNoWorkbook)
}

func TestGeneratedTemplateIsEmpty(t *testing.T) {
	t.Parallel()

	s := newWorkbook(t)
	tbl, err := s.Load(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, tbl.Rows)
	assert.Equal(t, profile.Columns, tbl.Rows[0])
	assert.Empty(t, tbl.Keys())
	assert.Equal(t, 1, tbl.FirstEmpty(), "summary cells beside the table do not occupy rows")
}

func TestSaveRoundTripKeepsFormulas(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newWorkbook(t)

	tbl, err := s.Load(ctx)
	require.NoError(t, err)
	alpha := profile.Profile{Name: "alpha", Sensitivity: 400, Accessory: "padX", Outline: "red", Brightness: "ON"}
	beta := profile.Profile{Name: "beta", Sensitivity: 380.5, Accessory: "padY", Outline: "yellow", Brightness: "OFF"}
	require.NoError(t, tbl.Put(tbl.FirstEmpty(), alpha))
	require.NoError(t, tbl.Put(tbl.FirstEmpty(), beta))
	require.NoError(t, s.Save(ctx, tbl))

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, again.Keys())
	got, err := again.ProfileAt(2)
	require.NoError(t, err)
	assert.Equal(t, beta, got)

	f, err := excelize.OpenFile(s.Path())
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck // test handle

	formula, err := f.GetCellFormula(templateSheet, avgFormulaCell)
	require.NoError(t, err)
	assert.Contains(t, formula, "AVERAGE")
	label, err := f.GetCellValue(templateSheet, bfiLabelCell)
	require.NoError(t, err)
	assert.Equal(t, "BFI:", label)

	typ, err := f.GetCellType(templateSheet, "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ, "eDPI is written as a number")
}

func TestSaveHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	s := newWorkbook(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tbl, err := s.Load(context.Background())
	require.NoError(t, err)
	require.ErrorIs(t, s.Save(ctx, tbl), context.Canceled)
}

func TestSaveKeepsFileMode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newWorkbook(t)
	require.NoError(t, os.Chmod(s.Path(), 0o644))

	tbl, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, tbl.Put(tbl.FirstEmpty(), profile.Profile{Name: "alpha", Sensitivity: 400, Accessory: "padX", Outline: "red", Brightness: "ON"}))
	require.NoError(t, s.Save(ctx, tbl))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
