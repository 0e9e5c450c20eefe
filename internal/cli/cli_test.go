package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/fileformatter/internal/core"
)

const sampleCSV = " Customer-ID# ,signup_date\n7,2024-01-15\n,\n8,44197\n"

// run executes formatctl with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runWithLogs(t, args...)
	return out, err
}

// runWithLogs executes formatctl with args and returns stdout and stderr.
func runWithLogs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := New(&out, &errOut).Execute(t.Context(), args)
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(core.SheetName)
	require.NoError(t, err)
	return rows
}

func TestFormat_Defaults(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "customers.csv", sampleCSV)

	out, err := run(t, "format", in)
	require.NoError(t, err)

	want := filepath.Join(dir, "customers_formatted.xlsx")
	assert.Equal(t, want+"\n", out)
	assert.Equal(t, [][]string{
		{"Customer Id", "Signup Date"},
		{"7", "1/15/2024"},
		{"8", "1/1/2021"},
	}, readRows(t, want))
}

func TestFormat_LogsFinalState(t *testing.T) {
	dir := t.TempDir()

	t.Run("complete", func(t *testing.T) {
		in := writeFile(t, dir, "customers.csv", sampleCSV)
		_, logs, err := runWithLogs(t, "format", in)
		require.NoError(t, err)
		assert.Contains(t, logs, "state=complete")
		assert.Contains(t, logs, "result=customers_formatted.xlsx")
	})

	t.Run("failed", func(t *testing.T) {
		in := writeFile(t, dir, "empty.csv", "a,b\n")
		_, logs, err := runWithLogs(t, "format", in)
		require.Error(t, err)
		assert.Contains(t, logs, "state=upload")
		assert.Contains(t, logs, "code=FILE005")
	})
}

func TestFormat_NoDefaultsWithFlag(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "customers.csv", sampleCSV)
	dst := filepath.Join(dir, "out.xlsx")

	_, err := run(t, "format", in, "--no-defaults", "--headers", "-o", dst)
	require.NoError(t, err)

	rows := readRows(t, dst)
	assert.Equal(t, []string{"Customer Id", "Signup Date"}, rows[0])
	assert.Len(t, rows, 4, "blank row kept")
	assert.Equal(t, "2024-01-15", rows[1][1])
}

func TestFormat_PresetThenFlags(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "customers.csv", sampleCSV)
	preset := writeFile(t, dir, "options.toml", "remove_empty = false\nstandardize_headers = false\n")
	dst := filepath.Join(dir, "out.xlsx")

	_, err := run(t, "format", in, "--preset", preset, "--headers", "--date-layout", "2006/01/02", "-o", dst)
	require.NoError(t, err)

	rows := readRows(t, dst)
	assert.Equal(t, "Customer Id", rows[0][0], "flag overrides preset")
	assert.Len(t, rows, 4, "preset turned remove_empty off")
	assert.Equal(t, "2024/01/15", rows[1][1])
}

func TestFormat_BadPreset(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "customers.csv", sampleCSV)
	preset := writeFile(t, dir, "options.toml", "remove_empty = maybe\n")

	_, err := run(t, "format", in, "--preset", preset)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read preset")
}

func TestFormat_Summary(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "scores.csv", "name,score\nal,10\nbo,20\n")

	out, err := run(t, "format", in, "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "COLUMN")
	assert.Contains(t, out, "Score")
	assert.Contains(t, out, "15")
}

func TestFormat_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("header only", func(t *testing.T) {
		in := writeFile(t, dir, "empty.csv", "a,b\n")
		_, err := run(t, "format", in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FILE005")
		assert.NoFileExists(t, filepath.Join(dir, "empty_formatted.xlsx"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "format", filepath.Join(dir, "nope.csv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no argument", func(t *testing.T) {
		_, err := run(t, "format")
		assert.Error(t, err)
	})
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "scores.csv", "name,score\nal,10\nbo,20\n")

	out, err := run(t, "inspect", in, "--rows", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "scores.csv (csv): 2 rows, 2 columns")
	assert.Contains(t, out, "al")
	assert.NotContains(t, out, "bo")
	assert.Contains(t, out, "COLUMN")
}

func TestInspect_Unparseable(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "bad.xlsx", "nope")

	_, err := run(t, "inspect", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FILE002")
}
