package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shekelsync/shekelsync/internal/delimited"
	"github.com/shekelsync/shekelsync/internal/sheet"
	"github.com/shekelsync/shekelsync/internal/sheet/sheettest"
)

func workbook(t *testing.T, sheets ...sheettest.Sheet) Content {
	t.Helper()
	wb, err := sheet.Open("statement.xlsx", sheettest.Build(t, sheets...))
	require.NoError(t, err)
	return WorkbookContent(wb)
}

func csvContent(t *testing.T, path string) Content {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	table, err := delimited.Parse(data)
	require.NoError(t, err)
	return DelimitedContent(table)
}

func TestKind_String(t *testing.T) {
	names := make([]string, 0, len(Kinds))
	for _, k := range Kinds {
		names = append(names, k.String())
	}
	assert.Equal(t, []string{"hapoalim", "cal", "max", "isracard", "leumi", "discount"}, names)
	assert.Equal(t, "kind(42)", Kind(42).String())
}

func TestNew_EveryKind(t *testing.T) {
	for _, k := range Kinds {
		v := New(k)
		require.NotNil(t, v, k.String())
		assert.Equal(t, k, v.Kind())
		assert.Equal(t, k.String(), v.Info().Kind)
		assert.NotEmpty(t, v.Info().Identifiers)
	}
}

func TestNew_UnknownPanics(t *testing.T) {
	assert.Panics(t, func() { New(Kind(99)) })
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&Hapoalim{})
	v := r.Get("hapoalim")
	require.NotNil(t, v)
	assert.Equal(t, KindHapoalim, v.Kind())
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&Cal{})
	assert.NotNil(t, r.Get("Cal"))
	assert.NotNil(t, r.Get("CAL"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&Max{})
	assert.Panics(t, func() { r.Register(&Max{}) })
}

func TestDefaultRegistry_Order(t *testing.T) {
	r := DefaultRegistry()
	require.Len(t, r.All(), len(Kinds))
	for i, v := range r.All() {
		assert.Equal(t, Kinds[i], v.Kind())
	}
}

func TestRegistry_Detect_CSV(t *testing.T) {
	r := DefaultRegistry()
	c := csvContent(t, "../../testdata/shekel123456789.csv")

	v, id := r.Detect("shekel123456789.csv", c)
	require.NotNil(t, v)
	assert.Equal(t, KindHapoalim, v.Kind())
	assert.Equal(t, "123456789", id)
}

func TestRegistry_Detect_Deterministic(t *testing.T) {
	r := DefaultRegistry()
	c := workbook(t, isracardSheet())

	first, firstID := r.Detect("Export.xlsx", c)
	require.NotNil(t, first)
	for i := 0; i < 5; i++ {
		v, id := r.Detect("Export.xlsx", c)
		assert.Equal(t, first.Kind(), v.Kind())
		assert.Equal(t, firstID, id)
	}
}

func TestRegistry_Detect_NoMatch(t *testing.T) {
	r := DefaultRegistry()
	c := workbook(t, sheettest.Sheet{Name: "Sheet1", Rows: [][]any{{"hello", "world"}}})

	v, id := r.Detect("random.xlsx", c)
	assert.Nil(t, v)
	assert.Empty(t, id)
}

func TestRegistry_Detect_ContentKindGate(t *testing.T) {
	r := DefaultRegistry()
	table, err := delimited.ParseText("a,b\n1,2\n")
	require.NoError(t, err)

	// A Cal-looking file name does not route delimited text to a workbook vendor.
	v, _ := r.Detect("פירוט חיובים לכרטיס 1234.csv", DelimitedContent(table))
	assert.Nil(t, v)
}

func TestExtract_WrongContentKind(t *testing.T) {
	table, err := delimited.ParseText("a,b\n1,2\n")
	require.NoError(t, err)
	csv := DelimitedContent(table)
	xlsx := workbook(t, sheettest.Sheet{Name: "Sheet1", Rows: [][]any{{"x"}}})

	for _, k := range Kinds {
		v := New(k)
		wrong := csv
		if v.Accepts() == ContentDelimited {
			wrong = xlsx
		}
		_, err := v.Extract("file", wrong)
		assert.ErrorIs(t, err, ErrFormat, k.String())
	}
}

func TestScan_FindsStatements(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))

	for _, name := range []string{"bank.csv", "card.xlsx", "old.xls", "macro.xlsm", "other.txt", ".hidden.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(importDir, name), []byte("data"), 0o644))
	}

	files, err := Scan(dir)
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"bank.csv", "card.xlsx", "old.xls", "macro.xlsm"}, names)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	processedDir := filepath.Join(importDir, "processed")
	require.NoError(t, os.MkdirAll(processedDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processedDir, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
	assert.Equal(t, int64(4), files[0].Size)
}

func TestScan_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.xlsx"), []byte("data"), 0o644))

	err := MarkProcessed(dir, "bank.xlsx")
	require.NoError(t, err)

	// Source gone.
	_, err = os.Stat(filepath.Join(importDir, "bank.xlsx"))
	assert.True(t, os.IsNotExist(err))

	// Destination exists.
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "bank.xlsx"))
	assert.NoError(t, err)
}

func TestMarkProcessed_Missing(t *testing.T) {
	dir := t.TempDir()
	err := MarkProcessed(dir, "ghost.csv")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "moving ghost.csv")
}
