// 包 binder：为每个区域要素绑定提示框与悬停样式切换
package binder

import (
	"sync"

	"realm-map/internal/realm"
)

// Style：多边形绘制样式（字段名对齐 Leaflet path options）
type Style struct {
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillColor   string  `json:"fillColor"`
	FillOpacity float64 `json:"fillOpacity"`
}

// 默认与强调样式：与数据无关，所有要素共用一对
var (
	DefaultStyle = Style{
		Color:       "#5b3a1a",
		Weight:      1,
		Opacity:     0.9,
		FillColor:   "#c9a227",
		FillOpacity: 0.35,
	}
	HighlightStyle = Style{
		Color:       "#5b3a1a",
		Weight:      3,
		Opacity:     1,
		FillColor:   "#c9a227",
		FillOpacity: 0.65,
	}
)

// StyleFunc：样式解析回调
type StyleFunc func(realm.Feature) Style

// FeatureFunc：逐要素初始化回调
type FeatureFunc func(realm.Feature, Layer)

// Layer：渲染面为单个要素提供的句柄
type Layer interface {
	SetStyle(Style)
	BindTooltip(text string)
	OnHover(enter, leave func())
}

// 文档注释：渲染面契约（外部协作方）
// 背景：渲染面负责把集合 + 样式回调 + 逐要素回调变成可交互的图形；核心只提供回调。
type Surface interface {
	AddRegions(c *realm.Collection, style StyleFunc, onEach FeatureFunc) error
}

// StyleFor：样式解析，当前与要素数据无关
func StyleFor(realm.Feature) Style { return DefaultStyle }

// 文档注释：提示框文本
// 约束：第一行古名；仅当现代名与古名不同才追加 "Modern: <现代名>"。
func TooltipText(f realm.Feature) string {
	alt := f.AlternateName()
	modern := f.ModernName()
	if alt == "" {
		alt = modern
	}
	if modern == "" || modern == alt {
		return alt
	}
	return alt + "\nModern: " + modern
}

// 文档注释：单要素绑定
// 背景：Enter/Leave 幂等且对称：无论切换多少次，离开后恢复为 DefaultStyle。
type Binding struct {
	mu      sync.Mutex
	layer   Layer
	feature realm.Feature
	hovered bool
}

// Bind：为要素设置默认样式、提示框与悬停处理
func Bind(f realm.Feature, l Layer) *Binding {
	b := &Binding{layer: l, feature: f}
	l.SetStyle(StyleFor(f))
	l.BindTooltip(TooltipText(f))
	l.OnHover(b.Enter, b.Leave)
	return b
}

func (b *Binding) Enter() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hovered = true
	b.layer.SetStyle(HighlightStyle)
}

func (b *Binding) Leave() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hovered = false
	b.layer.SetStyle(StyleFor(b.feature))
}

func (b *Binding) Hovered() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hovered
}

func (b *Binding) Feature() realm.Feature { return b.feature }

// 文档注释：把已富化集合挂到渲染面
// 返回：按要素顺序的绑定列表；渲染面报错时原样返回。
func Mount(s Surface, c *realm.Collection) ([]*Binding, error) {
	out := make([]*Binding, 0, c.Len())
	err := s.AddRegions(c, StyleFor, func(f realm.Feature, l Layer) {
		out = append(out, Bind(f, l))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
