// 包 realm：区域要素集合的数据结构、解析与古名富化
package realm

import "encoding/json"

// 富化后写入属性包的派生字段与兜底值
const (
	PropModernName    = "modernName"
	PropAlternateName = "alternateName"
	UnknownRealm      = "Unknown Realm"
)

// 文档注释：现代名候选字段（按优先级）
// 背景：对齐 Natural Earth 国家边界数据：长名 → 行政名 → 主权名。
var nameFields = []string{"NAME_LONG", "ADMIN", "SOVEREIGNT"}

// 文档注释：单个区域要素（GeoJSON Feature）
// 约束：几何以原始 JSON 字节保存，富化过程不解析也不改写；属性包为开放结构。
type Feature struct {
	Type       string          `json:"type"`
	ID         any             `json:"id,omitempty"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// Collection：有序要素集合，顺序仅影响绘制次序
type Collection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// ModernName：读取富化后的现代名；未富化时为空
func (f Feature) ModernName() string { return propString(f.Properties, PropModernName) }

// AlternateName：读取富化后的古名；未富化时为空
func (f Feature) AlternateName() string { return propString(f.Properties, PropAlternateName) }

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Features)
}

func propString(p map[string]any, k string) string {
	if v, ok := p[k].(string); ok {
		return v
	}
	return ""
}
