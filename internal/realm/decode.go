package realm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed：响应体不是合法的 FeatureCollection
var ErrMalformed = errors.New("malformed region collection")

// 文档注释：解析 GeoJSON FeatureCollection
// 背景：数据集来自远端或本地文件，结构不符时与拉取失败同等处理（由生命周期控制器转为错误态）。
// 约束：type 大小写不敏感；features 必须存在且为数组；单个要素缺失属性包时补空 map。
func Decode(r io.Reader) (*Collection, error) {
	var raw struct {
		Type     string             `json:"type"`
		Features *[]json.RawMessage `json:"features"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !strings.EqualFold(raw.Type, "FeatureCollection") {
		return nil, fmt.Errorf("%w: type %q", ErrMalformed, raw.Type)
	}
	if raw.Features == nil {
		return nil, fmt.Errorf("%w: missing features", ErrMalformed)
	}
	out := &Collection{Type: "FeatureCollection", Features: make([]Feature, 0, len(*raw.Features))}
	for i, b := range *raw.Features {
		var f Feature
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("%w: feature %d: %v", ErrMalformed, i, err)
		}
		if f.Type == "" {
			f.Type = "Feature"
		}
		if f.Properties == nil {
			f.Properties = map[string]any{}
		}
		out.Features = append(out.Features, f)
	}
	return out, nil
}
