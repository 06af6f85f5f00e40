package main

import (
	"os"
	"wordmap/internal/logger"
	"wordmap/internal/utils"
	"wordmap/internal/xlsconv"

	"github.com/joho/godotenv"
)

// 文档注释：统计表 Excel 转 JSON
// 约束：XLS_COLUMNS 形如 "都道府県,指標値 Indicator=avg_temperature"；XLS_HEADER_ROW 从 0 起算。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	in := utils.EnvString("XLS_INPUT", "a202.xlsx")
	out := utils.EnvString("XLS_OUTPUT", "weather_by_prefecture.json")
	cols, err := xlsconv.ParseColumns(utils.EnvString("XLS_COLUMNS",
		"都道府県,指標値 Indicator.5=avg_temperature,指標値 Indicator.10=Yearly precipitation"))
	if err != nil {
		l.Error("xls_columns_invalid", "err", err)
		os.Exit(1)
	}
	recs, err := xlsconv.Convert(in, utils.EnvInt("XLS_HEADER_ROW", xlsconv.DefaultHeaderRow), cols)
	if err != nil {
		l.Error("xls_convert_error", "path", in, "err", err)
		os.Exit(1)
	}
	if err := utils.WriteJSON(out, recs, false); err != nil {
		l.Error("xls_write_error", "path", out, "err", err)
		os.Exit(1)
	}
	l.Info("xls_convert_done", "records", len(recs), "path", out)
}
