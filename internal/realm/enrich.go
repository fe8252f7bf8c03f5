package realm

import (
	"bytes"
	"strings"

	"realm-map/internal/naming"
)

// 文档注释：古名富化（纯函数）
// 背景：为每个要素计算 modernName 与 alternateName，供提示框与悬停展示使用。
// 约束：不修改、不别名输入（属性深拷贝，几何字节复制）；不丢弃要素，输出长度恒等于输入长度；nil 输入返回空集合。
func Enrich(raw *Collection, table naming.Lookuper) *Collection {
	out := &Collection{Type: "FeatureCollection", Features: make([]Feature, 0, raw.Len())}
	if raw == nil {
		return out
	}
	if raw.Type != "" {
		out.Type = raw.Type
	}
	for _, f := range raw.Features {
		out.Features = append(out.Features, enrichFeature(f, table))
	}
	return out
}

func enrichFeature(f Feature, table naming.Lookuper) Feature {
	props := make(map[string]any, len(f.Properties)+2)
	for k, v := range f.Properties {
		props[k] = cloneValue(v)
	}
	modern := ResolveModernName(f.Properties)
	alt := modern
	if v, ok := lookup(table, modern); ok {
		alt = v
	}
	props[PropModernName] = modern
	props[PropAlternateName] = alt
	return Feature{
		Type:       f.Type,
		ID:         cloneValue(f.ID),
		Properties: props,
		Geometry:   bytes.Clone(f.Geometry),
	}
}

// 文档注释：按优先级解析现代名
// 约束：仅非空白字符串视为存在；全部缺失返回 UnknownRealm。
func ResolveModernName(props map[string]any) string {
	for _, k := range nameFields {
		if s, ok := props[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return UnknownRealm
}

// 深拷贝 JSON 解码得到的嵌套值（map/slice），标量原样返回
func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, vv := range x {
			m[k] = cloneValue(vv)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, vv := range x {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

// Stats：富化结果中命中/未命中映射的数量
type Stats struct {
	Total    int
	Mapped   int
	Unmapped int
	Unknown  int
}

// 文档注释：统计富化后的集合，用于日志与指标
// 约束：Mapped 以映射表命中为准；恒等映射（古名与现代名相同）同样计入 Mapped。table 为 nil 时全部计入 Unmapped。
func Summarize(c *Collection, table naming.Lookuper) Stats {
	var s Stats
	if c == nil {
		return s
	}
	for _, f := range c.Features {
		s.Total++
		m := f.ModernName()
		if m == UnknownRealm {
			s.Unknown++
		}
		if _, ok := lookup(table, m); ok {
			s.Mapped++
		} else {
			s.Unmapped++
		}
	}
	return s
}

// 空古名视为未命中
func lookup(table naming.Lookuper, modern string) (string, bool) {
	if table == nil {
		return "", false
	}
	v, ok := table.Lookup(modern)
	return v, ok && v != ""
}
