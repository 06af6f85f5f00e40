// 包 corpus：读取按都道府県分目录存放的口コミ文本
//
// 目录约定：<root>/<prefKey>/<市区町村名>.txt，一个文件对应一个市区町村。
package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"wordmap/internal/prefecture"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

var ErrNoDocuments = errors.New("corpus: no documents")

// Document：一个市区町村（或合并后的郡）的全部文本
type Document struct {
	Name string
	Text string
}

// Prefecture：单个都道府県的文本集合，Docs 按文件名排序
type Prefecture struct {
	Key  string
	Name string
	Docs []Document
}

// 文档注释：加载一个都道府県目录
// 背景：抓取器把每个市区町村的口コミ写成独立文本文件；这里按文件名排序读入，保证后续打分可复现。
// 约束：只读取 .txt；非法 UTF-8 按 Shift_JIS 解码；目录中没有文本时返回 ErrNoDocuments。
func Load(root, key string) (*Prefecture, error) {
	dir := filepath.Join(root, key)
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	p := &Prefecture{Key: key, Name: key}
	if pref, ok := prefecture.ByKey(key); ok {
		p.Name = pref.Name
	}
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		text, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		p.Docs = append(p.Docs, Document{
			Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Text: text,
		})
	}
	if len(p.Docs) == 0 {
		return p, fmt.Errorf("%s: %w", dir, ErrNoDocuments)
	}
	return p, nil
}

// Decode：UTF-8（去 BOM）优先，否则按 Shift_JIS
func Decode(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), japanese.ShiftJIS.NewDecoder()))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ListKeys：root 下的子目录名（即都道府県键），排序后返回
func ListKeys(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			keys = append(keys, e.Name())
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Texts：按顺序返回每个文件的文本
func (p *Prefecture) Texts() []string {
	out := make([]string, len(p.Docs))
	for i, d := range p.Docs {
		out[i] = d.Text
	}
	return out
}

// Joined：都道府県级文档，每个文件后追加换行
func (p *Prefecture) Joined() string {
	var sb strings.Builder
	for _, d := range p.Docs {
		sb.WriteString(d.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// 文档注释：词表用分组
// 背景：町村数量多且文本少，按所属郡合并后再打分；市与区保持独立。
// 约束：市/区结尾的名字原样作为键，文本不追加换行；其余名字取「郡」之前的部分作为键，文本追加换行后拼接。
// 输出顺序为各键首次出现的顺序。
func (p *Prefecture) GroupForWordList() []Document {
	return group(p.Docs, func(name string) (string, bool) {
		if strings.HasSuffix(name, "市") || strings.HasSuffix(name, "区") {
			return name, false
		}
		before, _, _ := strings.Cut(name, "郡")
		return before, true
	})
}

// GroupForRanking：含「郡」的名字合并为「<郡名>郡」，其余原样
func (p *Prefecture) GroupForRanking() []Document {
	return group(p.Docs, func(name string) (string, bool) {
		if before, _, ok := strings.Cut(name, "郡"); ok {
			return before + "郡", true
		}
		return name, true
	})
}

func group(docs []Document, keyOf func(string) (string, bool)) []Document {
	idx := map[string]int{}
	var out []Document
	for _, d := range docs {
		key, merge := keyOf(d.Name)
		text := d.Text
		if merge {
			text += "\n"
		}
		i, ok := idx[key]
		if !ok {
			idx[key] = len(out)
			out = append(out, Document{Name: key, Text: text})
			continue
		}
		if merge {
			out[i].Text += text
		} else {
			out[i].Text = text
		}
	}
	return out
}
