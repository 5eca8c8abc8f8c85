package writer

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/card-statement-converter/internal/models"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func modernRecords() []models.TransactionRecord {
	rate := decimal.RequireFromString("1660.00").Div(decimal.RequireFromString("20.00")).Round(4)
	return []models.TransactionRecord{
		{Date: "01/03/2024", Time: "14:32", Description: "COFFEE SHOP PURCHASE", Amount: nd("250.00"), Currency: "INR", Type: models.Debit},
		{Date: "05/03/2024", Time: "21:45", Description: "STEAM GAMES", Amount: nd("1660.00"), Currency: "USD",
			ForexAmount: nd("20.00"), ForexRate: decimal.NewNullDecimal(rate), Type: models.Debit},
		{Date: "06/03/2024", Time: "10:00", Description: `BOOKS "PAPERBACK", VOL 2`, Currency: "INR", Type: models.Credit},
	}
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{Columns: models.PipelineModern.Columns()}
	require.NoError(t, w.Write(&buf, modernRecords()))

	want := `"date","time","currency","description","forex_amount","forex_rate","amount","type"
"01/03/2024","14:32","INR","COFFEE SHOP PURCHASE","","","250.00","Dr"
"05/03/2024","21:45","USD","STEAM GAMES","20.00","83.0000","1660.00","Dr"
"06/03/2024","10:00","INR","BOOKS ""PAPERBACK"", VOL 2","","","","Cr"
`
	assert.Equal(t, want, buf.String())
}

func TestCSVWriter_LegacyColumns(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{Columns: models.PipelineLegacy.Columns()}
	require.NoError(t, w.Write(&buf, []models.TransactionRecord{
		{Date: "15/02/2024", Description: "MERCHANT X", Amount: nd("1200.00"), Currency: "INR", Type: models.Credit},
	}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"date","currency","description","forex_amount","forex_rate","amount","type"`, lines[0])
	assert.Equal(t, `"15/02/2024","INR","MERCHANT X","","","1200.00","Cr"`, lines[1])
}

func TestCSVWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{Columns: models.PipelineLegacy.Columns()}
	require.NoError(t, w.Write(&buf, nil))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestCSVWriter_NormalizesNewlines(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{Columns: []string{models.ColDescription}}
	require.NoError(t, w.Write(&buf, []models.TransactionRecord{{Description: "line one\r\nline two\rthree"}}))
	assert.Equal(t, "\"description\"\n\"line one\nline two\nthree\"\n", buf.String())
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   decimal.NullDecimal
		want string
	}{
		{"missing", decimal.NullDecimal{}, ""},
		{"two places", nd("250.00"), "250.00"},
		{"integer", nd("500"), "500"},
		{"rounded rate", decimal.NewNullDecimal(decimal.RequireFromString("83").Round(4)), "83.0000"},
		{"positive exponent", decimal.NewNullDecimal(decimal.New(12, 2)), "1200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDecimal(tt.in))
		})
	}
}

func TestReadCSV_RoundTrip(t *testing.T) {
	w := &CSVWriter{Columns: models.PipelineModern.Columns()}

	var first bytes.Buffer
	require.NoError(t, w.Write(&first, modernRecords()))

	records, pipeline, err := ReadCSV(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, models.PipelineModern, pipeline)
	require.Len(t, records, 3)
	assert.Equal(t, "83.0000", formatDecimal(records[1].ForexRate))
	assert.False(t, records[2].Amount.Valid)

	var second bytes.Buffer
	require.NoError(t, w.Write(&second, records))
	assert.Equal(t, first.String(), second.String())
}

func TestReadCSV_Legacy(t *testing.T) {
	in := `"date","currency","description","forex_amount","forex_rate","amount","type"
"15/02/2024","INR","MERCHANT X","","","1200.00","Cr"
`
	records, pipeline, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, models.PipelineLegacy, pipeline)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Time)
	assert.Equal(t, models.Credit, records[0].Type)
}

func TestReadCSV_BadDecimal(t *testing.T) {
	in := "date,amount\n01/01/2024,abc\n"
	_, _, err := ReadCSV(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func TestXLSXWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := &XLSXWriter{Columns: models.PipelineModern.Columns()}
	require.NoError(t, w.Write(&buf, modernRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, models.PipelineModern.Columns(), rows[0])
	assert.Equal(t, []string{"05/03/2024", "21:45", "USD", "STEAM GAMES", "20.00", "83.0000", "1660.00", "Dr"}, rows[2])
}

func TestWriteToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	path := filepath.Join(dir, "statement.csv")

	w := &CSVWriter{Columns: models.PipelineModern.Columns()}
	require.NoError(t, WriteToFile(w, path, modernRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `"date","time"`))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

type failingWriter struct{}

func (failingWriter) Write(_ io.Writer, _ []models.TransactionRecord) error {
	return errors.New("disk full")
}

func TestWriteToFile_FailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statement.csv")

	err := WriteToFile(failingWriter{}, path, nil)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Equal(t, ".xlsx", f.Extension())

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	w, err := New(FormatXLSX, nil)
	require.NoError(t, err)
	assert.IsType(t, &XLSXWriter{}, w)

	_, err = New(Format("ods"), nil)
	assert.Error(t, err)
}
