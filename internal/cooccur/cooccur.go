// 包 cooccur：统计词在区域间的共现次数
package cooccur

import (
	"bytes"
	"encoding/json"
	"sort"

	"wordmap/internal/layout"

	"gonum.org/v1/gonum/mat"
)

// Matrix：词汇表与对称共现矩阵，对角线为 0
type Matrix struct {
	Vocab  []string
	Counts *mat.Dense
}

// 文档注释：由区域布局记录构建共现矩阵
// 背景：前端的共现视图需要知道哪些词常在同一区域同时出现。
// 约束：词汇表为全部记录中词的去重排序；每条记录内每对不同的词在两个对称位置各加 1，记录内重复的词只算一次。
func Build(recs []layout.Record) *Matrix {
	seen := map[string]struct{}{}
	perRec := make([][]string, len(recs))
	for i, r := range recs {
		local := map[string]struct{}{}
		for _, w := range r.Data {
			if _, dup := local[w.Word]; dup {
				continue
			}
			local[w.Word] = struct{}{}
			perRec[i] = append(perRec[i], w.Word)
			seen[w.Word] = struct{}{}
		}
	}
	vocab := make([]string, 0, len(seen))
	for w := range seen {
		vocab = append(vocab, w)
	}
	sort.Strings(vocab)
	m := &Matrix{Vocab: vocab}
	if len(vocab) == 0 {
		return m
	}
	idx := make(map[string]int, len(vocab))
	for i, w := range vocab {
		idx[w] = i
	}
	m.Counts = mat.NewDense(len(vocab), len(vocab), nil)
	for _, words := range perRec {
		for a := 0; a < len(words); a++ {
			for b := a + 1; b < len(words); b++ {
				i, j := idx[words[a]], idx[words[b]]
				m.Counts.Set(i, j, m.Counts.At(i, j)+1)
				m.Counts.Set(j, i, m.Counts.At(j, i)+1)
			}
		}
	}
	return m
}

// At：按词查询共现次数，未知词返回 0
func (m *Matrix) At(a, b string) int {
	if m.Counts == nil {
		return 0
	}
	i := sort.SearchStrings(m.Vocab, a)
	j := sort.SearchStrings(m.Vocab, b)
	if i >= len(m.Vocab) || j >= len(m.Vocab) || m.Vocab[i] != a || m.Vocab[j] != b {
		return 0
	}
	return int(m.Counts.At(i, j))
}

// Rows：整数二维数组形式
func (m *Matrix) Rows() [][]int {
	n := len(m.Vocab)
	out := make([][]int, n)
	for i := 0; i < n; i++ {
		out[i] = make([]int, n)
		for j := 0; j < n; j++ {
			out[i][j] = int(m.Counts.At(i, j))
		}
	}
	return out
}

type wire struct {
	Vocab  []string `json:"vocab"`
	Matrix [][]int  `json:"cooccurrence_matrix"`
}

func (m *Matrix) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	vocab := m.Vocab
	if vocab == nil {
		vocab = []string{}
	}
	if err := enc.Encode(wire{Vocab: vocab, Matrix: m.Rows()}); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
