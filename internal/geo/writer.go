package geo

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

// featureOut：固定键顺序 type, properties, geometry
type featureOut struct {
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

func marshalFeature(f *Feature) ([]byte, error) {
	props := f.RawProperties
	if len(props) == 0 {
		props = json.RawMessage("null")
	}
	g := f.RawGeometry
	if len(g) == 0 {
		g = json.RawMessage("null")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(featureOut{Type: "Feature", Properties: props, Geometry: g}); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// 文档注释：写出 FeatureCollection
// 背景：lineOriented=true 时每个要素独占一行，便于对中间产物做 diff 审阅；否则写成单行紧凑格式。
// 约束：非 ASCII 字符原样输出，不做 \u 转义。
func WriteFeatureCollection(w io.Writer, fs []*Feature, lineOriented bool) error {
	bw := bufio.NewWriter(w)
	sep, head, foot := ",", `{"type":"FeatureCollection","features":[`, "]}\n"
	if lineOriented {
		sep, head, foot = ",\n", head+"\n", "\n]}\n"
	}
	if _, err := bw.WriteString(head); err != nil {
		return err
	}
	for i, f := range fs {
		b, err := marshalFeature(f)
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := bw.WriteString(sep); err != nil {
				return err
			}
		}
		if _, err := bw.Write(b); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString(foot); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile：写到路径，自动创建父目录
func WriteFile(path string, fs []*Feature, lineOriented bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteFeatureCollection(f, fs, lineOriented); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
