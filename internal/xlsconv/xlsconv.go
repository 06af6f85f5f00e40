// 包 xlsconv：把统计局 Excel 指标表转换为 JSON 记录
package xlsconv

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultHeaderRow：表头所在行（0 起算）
const DefaultHeaderRow = 11

// ErrNotXLSX：只支持 OOXML 工作簿
var ErrNotXLSX = errors.New("xlsconv: only .xlsx/.xlsm workbooks are supported")

// Column：源列名 → 输出键
type Column struct {
	Source string
	Target string
}

// ParseColumns：解析 "源=目标" 以逗号分隔的列表；省略 "=目标" 时沿用源列名
func ParseColumns(s string) ([]Column, error) {
	var out []Column
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		src, dst, ok := strings.Cut(part, "=")
		src = strings.TrimSpace(src)
		dst = strings.TrimSpace(dst)
		if !ok {
			dst = src
		}
		if src == "" || dst == "" {
			return nil, fmt.Errorf("bad column mapping %q", part)
		}
		out = append(out, Column{Source: src, Target: dst})
	}
	if len(out) == 0 {
		return nil, errors.New("no columns selected")
	}
	return out, nil
}

// Record：保持列顺序的一行
type Record struct {
	Keys   []string
	Values []any
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	buf.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(k); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
		buf.WriteByte(':')
		if err := enc.Encode(r.Values[i]); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Headers：清洗表头
// 约束：空单元格命名为 "Unnamed: <列号>"；重名列依次追加 ".1"、".2"；之后去掉首尾空白与换行。
func Headers(raw []string) []string {
	seen := map[string]int{}
	out := make([]string, len(raw))
	for i, h := range raw {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		if n, dup := seen[h]; dup {
			name = fmt.Sprintf("%s.%d", h, n)
		}
		seen[h]++
		out[i] = strings.ReplaceAll(strings.TrimSpace(name), "\n", "")
	}
	return out
}

func cellValue(s string) any {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(t, ",", ""), 64); err == nil {
		return f
	}
	return s
}

// 文档注释：读取工作簿第一张表并按列选择、重命名
// 背景：e-Stat 的都道府県指标表前 11 行是标题与注记，第 12 行才是表头；同名指标列靠序号后缀区分。
// 约束：扩展名不是 .xlsx/.xlsm 时返回 ErrNotXLSX；全空行跳过；数值单元格输出为数字，空单元格为 null；
// 选中的列不存在时返回错误并列出可用列名。
func Convert(path string, headerRow int, cols []Column) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrNotXLSX)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if headerRow < 0 || headerRow >= len(rows) {
		return nil, fmt.Errorf("%s: header row %d out of range (%d rows)", path, headerRow, len(rows))
	}
	headers := Headers(rows[headerRow])
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = -1
		for j, h := range headers {
			if h == c.Source {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return nil, fmt.Errorf("column %q not found; available: %s", c.Source, strings.Join(headers, ", "))
		}
	}
	out := []Record{}
	for _, row := range rows[headerRow+1:] {
		if blank(row) {
			continue
		}
		rec := Record{Keys: make([]string, len(cols)), Values: make([]any, len(cols))}
		for i, c := range cols {
			rec.Keys[i] = c.Target
			if idx[i] < len(row) {
				rec.Values[i] = cellValue(row[idx[i]])
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
