package geo

import (
	"encoding/json"
	"fmt"
	"os"
)

// 文档注释：按排行榜截取要素
// 背景：词云只为评论量靠前的市区町村绘制，排行榜由 municipality-rank 生成；
// N03_003（郡・政令市）或 N03_004（市区町村）任一命中前 n 个名称即保留。
// 约束：n<=0 或超过名单长度时使用整份名单；输出按 N03_007 排序。
func ExtractByRanking(fs []*Feature, names []string, n int) []*Feature {
	if n <= 0 || n > len(names) {
		n = len(names)
	}
	want := make(map[string]struct{}, n)
	for _, s := range names[:n] {
		want[s] = struct{}{}
	}
	var out []*Feature
	for _, f := range fs {
		_, d := want[f.Prop("N03_003")]
		_, m := want[f.Prop("N03_004")]
		if d || m {
			out = append(out, f)
		}
	}
	SortByAdminCode(out)
	return out
}

// 文档注释：读取排行榜中的市区町村名
// 约束：条目为数组；三元组 [都道府県, 市区町村, 件数] 取第二项，其余形式取第一项；非字符串条目跳过。
func LoadRankingNames(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows [][]any
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("decode ranking %s: %w", path, err)
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		idx := 0
		if len(r) >= 3 {
			idx = 1
		}
		if idx < len(r) {
			if s, ok := r[idx].(string); ok {
				names = append(names, s)
			}
		}
	}
	return names, nil
}
