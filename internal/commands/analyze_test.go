package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NashC/cashflow-analysis/internal/sample"
)

func writeSampleExport(t *testing.T, path string) {
	t.Helper()
	_, err := sample.New(3, 42).WriteFile(path)
	require.NoError(t, err)
}

func TestRunAnalyze_DirectoryImportMarksProcessed(t *testing.T) {
	dir := t.TempDir()
	writeSampleExport(t, filepath.Join(dir, "chase_export.csv"))

	var out bytes.Buffer
	err := runAnalyze(zerolog.Nop(), &out, dir, "chase", filepath.Join(dir, "cashflow.yaml"), "", "")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "CASH FLOW ANALYSIS SUMMARY")

	// The export moved into processed/ once the run succeeded.
	_, err = os.Stat(filepath.Join(dir, "chase_export.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "processed", "chase_export.csv"))
	assert.NoError(t, err)
}

func TestRunAnalyze_SingleFileStaysPut(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chase_export.csv")
	writeSampleExport(t, path)

	var out bytes.Buffer
	err := runAnalyze(zerolog.Nop(), &out, path, "chase", filepath.Join(dir, "cashflow.yaml"), "", "")
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRunAnalyze_UnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chase_export.csv")
	writeSampleExport(t, path)

	var out bytes.Buffer
	err := runAnalyze(zerolog.Nop(), &out, path, "gringotts", filepath.Join(dir, "cashflow.yaml"), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown bank format")
}

func TestRunAnalyze_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	err := runAnalyze(zerolog.Nop(), &out, dir, "chase", filepath.Join(dir, "cashflow.yaml"), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CSV exports found")
}
