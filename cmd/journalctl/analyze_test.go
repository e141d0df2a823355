package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `id,date,symbol,type,status,market,entryPrice,exitPrice,quantity,pnl
a,2025-07-01,BTCUSDT,Buy,Closed,FUTURES,100,110,1,10
b,2025-07-02,BTCUSDT,Sell,Closed,FUTURES,100,104,1,-4
c,2025-07-03,ETHUSDT,Buy,Open,FUTURES,50,,2,
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "july.csv", sampleCSV)
	missing := filepath.Join(dir, "missing.csv")

	var buf bytes.Buffer
	require.NoError(t, analyzeFiles(&buf, []string{good, missing}, "2025-07-31"))
	out := buf.String()

	assert.Contains(t, out, "july.csv")
	assert.NotContains(t, out, "missing.csv")
	assert.Contains(t, out, "50.00", "one win out of two closed trades")
	assert.Contains(t, out, "6.00")
	assert.Contains(t, out, "2.50")
}

func TestFindCSVFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", sampleCSV)
	writeFile(t, dir, "a.CSV", sampleCSV)
	writeFile(t, dir, "notes.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))

	files, err := findCSVFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.CSV"), filepath.Join(dir, "b.csv")}, files)
}
