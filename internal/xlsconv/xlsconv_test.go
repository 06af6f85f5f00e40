package xlsconv

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sh := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sh, "A1", "社会・人口統計体系"))
	require.NoError(t, f.SetSheetRow(sh, "A12", &[]any{" 都道府県\n", "指標値 Indicator", "", "指標値 Indicator"}))
	require.NoError(t, f.SetSheetRow(sh, "A13", &[]any{"北海道", 9.5, "x", 1150}))
	require.NoError(t, f.SetSheetRow(sh, "A15", &[]any{"青森県", "", "", "1,200"}))
	p := filepath.Join(t.TempDir(), "a202.xlsx")
	require.NoError(t, f.SaveAs(p))
	return p
}

func TestHeaders(t *testing.T) {
	assert.Equal(t,
		[]string{"都道府県", "X", "Unnamed: 2", "X.1", "X.2"},
		Headers([]string{" 都道府県\n", "X", "", "X", "X"}))
}

func TestConvertSelectsAndRenames(t *testing.T) {
	cols, err := ParseColumns("都道府県, 指標値 Indicator=avg_temperature ,指標値 Indicator.1=Yearly precipitation")
	require.NoError(t, err)
	recs, err := Convert(workbook(t), DefaultHeaderRow, cols)
	require.NoError(t, err)

	b, err := json.Marshal(recs)
	require.NoError(t, err)
	assert.Equal(t, `[{"都道府県":"北海道","avg_temperature":9.5,"Yearly precipitation":1150},{"都道府県":"青森県","avg_temperature":null,"Yearly precipitation":1200}]`, string(b))
}

func TestConvertErrors(t *testing.T) {
	_, err := Convert("a202.xls", DefaultHeaderRow, []Column{{"a", "a"}})
	assert.ErrorIs(t, err, ErrNotXLSX)

	_, err = Convert(workbook(t), DefaultHeaderRow, []Column{{"気温", "t"}})
	assert.ErrorContains(t, err, "available")

	_, err = Convert(workbook(t), 99, []Column{{"a", "a"}})
	assert.Error(t, err)

	_, err = ParseColumns(" , ")
	assert.Error(t, err)
}
