// 包 tokenize：口コミ文本的规范化与名词抽取
package tokenize

import (
	"regexp"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"golang.org/x/text/unicode/norm"
)

const nounPOS = "名詞"

var (
	reDrop    = regexp.MustCompile(`[【】 ()（）『』　「」]`)
	reBracket = regexp.MustCompile(`[\[\]［］]`)
	reMention = regexp.MustCompile(`[@＠][\p{L}\p{M}\p{N}_]+`)
	reDecimal = regexp.MustCompile(`\p{Nd}+\.\p{Nd}+`)
)

// Tokenizer：包装 kagome（IPA 辞書），只保留名词
// 约束：kagome 的 Tokenizer 可并发使用，本类型同样可被多个 goroutine 共享。
type Tokenizer struct {
	kg *tokenizer.Tokenizer
}

// New：加载内置 IPA 辞書并省略 BOS/EOS
func New() (*Tokenizer, error) {
	kg, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Tokenizer{kg: kg}, nil
}

// 文档注释：分词前的规范化
// 背景：口コミ中全角半角混用，括号与 @ 提及会干扰形态素解析。
// 约束：顺序固定为 NFKC、大写化、删除括号类、方括号替换为空格、删除提及、删除小数。
func Normalize(text string) string {
	s := norm.NFKC.String(text)
	s = strings.ToUpper(s)
	s = reDrop.ReplaceAllString(s, "")
	s = reBracket.ReplaceAllString(s, " ")
	s = reMention.ReplaceAllString(s, "")
	s = reDecimal.ReplaceAllString(s, "")
	return s
}

// Nouns：按出现顺序返回名词表层形
func (t *Tokenizer) Nouns(text string) []string {
	s := Normalize(text)
	if s == "" {
		return nil
	}
	var out []string
	for _, tok := range t.kg.Tokenize(s) {
		if strings.TrimSpace(tok.Surface) == "" {
			continue
		}
		pos := tok.POS()
		if len(pos) == 0 || pos[0] != nounPOS {
			continue
		}
		out = append(out, tok.Surface)
	}
	return out
}

// Joined：空格连接的名词串，作为 TF-IDF 的输入文档
func (t *Tokenizer) Joined(text string) string {
	return strings.Join(t.Nouns(text), " ")
}

// NounsInto：抽取名词并计入 acc；acc 为 nil 时等同 Nouns
func (t *Tokenizer) NounsInto(text string, acc *Accumulator) []string {
	nouns := t.Nouns(text)
	if acc != nil {
		acc.Add(nouns...)
	}
	return nouns
}
