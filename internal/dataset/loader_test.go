package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV_TitleCaseHeaders(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"Order Date,Sales,Category,Region,Segment",
		"2015-01-03,261.96,Furniture,South,Consumer",
		"2015-01-10,731.94,Technology,West,Corporate",
	}, "\n"))

	records, err := LoadCSV(path, logrus.New())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Furniture", records[0].Category)
	assert.Equal(t, "South", records[0].Region)
	assert.Equal(t, "Consumer", records[0].Segment)
	assert.InDelta(t, 261.96, records[0].Sales.InexactFloat64(), 1e-9)
	assert.Equal(t, 2015, records[0].OrderDate.Year())
}

func TestLoadCSV_SnakeCaseAndSlashDates(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"order_date,sales,category,region,segment",
		"1/3/2015,100.5,Furniture,South,Consumer",
	}, "\n"))

	records, err := LoadCSV(path, logrus.New())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2015, records[0].OrderDate.Year())
}

func TestLoadCSV_SkipsMalformedRows(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"Order Date,Sales,Category,Region,Segment",
		"2015-01-03,261.96,Furniture,South,Consumer",
		"not-a-date,100,Furniture,South,Consumer",
		"2015-02-03,not-a-number,Furniture,South,Consumer",
	}, "\n"))

	records, err := LoadCSV(path, logrus.New())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLoadCSV_MissingColumns(t *testing.T) {
	path := writeTempCSV(t, "Foo,Bar\n1,2\n")

	_, err := LoadCSV(path, logrus.New())
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	path := writeTempCSV(t, strings.Join([]string{
		"Order Date,Sales,Category,Region,Segment",
		"2015-01-03,10,Technology,West,Consumer",
		"2015-01-04,20,Furniture,South,Corporate",
		"2015-01-05,30,Furniture,West,Consumer",
	}, "\n"))

	records, err := LoadCSV(path, logrus.New())
	require.NoError(t, err)

	opts := Options(records)
	assert.Equal(t, []string{"Furniture", "Technology"}, opts.Categories)
	assert.Equal(t, []string{"South", "West"}, opts.Regions)
	assert.Equal(t, []string{"Consumer", "Corporate"}, opts.Segments)
}
