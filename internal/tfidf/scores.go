package tfidf

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Scores：有序的得分表，序列化为保持顺序的 JSON 对象 {"词": 得分, ...}
type Scores []TermScore

func (s Scores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ts := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(ts.Word)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(ts.Score)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON：按文件中的键顺序还原
func (s *Scores) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("tfidf: scores must be a JSON object")
	}
	out := Scores{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)
		var v float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("tfidf: score for %q: %w", key, err)
		}
		out = append(out, TermScore{Word: key, Score: v})
	}
	*s = out
	return nil
}

// Map：转为无序映射，便于按词查询
func (s Scores) Map() map[string]float64 {
	m := make(map[string]float64, len(s))
	for _, ts := range s {
		m[ts.Word] = ts.Score
	}
	return m
}

func marshalNoEscape(v string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
