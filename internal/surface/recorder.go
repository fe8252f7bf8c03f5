// 包 surface：记录式渲染面；把逐要素绑定编译为浏览器端可直接套用的图层文档
package surface

import (
	"errors"
	"fmt"
	"sync"

	"realm-map/internal/binder"
	"realm-map/internal/realm"
)

var (
	ErrNoRegions  = errors.New("no regions to mount")
	ErrAsymmetric = errors.New("hover leave did not restore the default style")
)

// Layer：记录样式、提示框与悬停回调的图层句柄
type Layer struct {
	mu      sync.Mutex
	index   int
	feature realm.Feature
	style   binder.Style
	tooltip string
	enter   func()
	leave   func()
}

func (l *Layer) SetStyle(s binder.Style) {
	l.mu.Lock()
	l.style = s
	l.mu.Unlock()
}

func (l *Layer) BindTooltip(text string) {
	l.mu.Lock()
	l.tooltip = text
	l.mu.Unlock()
}

func (l *Layer) OnHover(enter, leave func()) {
	l.mu.Lock()
	l.enter, l.leave = enter, leave
	l.mu.Unlock()
}

// Hover：模拟指针进入
func (l *Layer) Hover() {
	l.mu.Lock()
	fn := l.enter
	l.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Unhover：模拟指针离开
func (l *Layer) Unhover() {
	l.mu.Lock()
	fn := l.leave
	l.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (l *Layer) Style() binder.Style {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.style
}

func (l *Layer) Tooltip() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tooltip
}

func (l *Layer) Index() int { return l.index }

// Recorder：binder.Surface 的记录实现
type Recorder struct {
	mu     sync.Mutex
	layers []*Layer
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) AddRegions(c *realm.Collection, style binder.StyleFunc, onEach binder.FeatureFunc) error {
	if c == nil {
		return ErrNoRegions
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range c.Features {
		l := &Layer{index: i, feature: f}
		if style != nil {
			l.style = style(f)
		}
		r.layers = append(r.layers, l)
		if onEach != nil {
			onEach(f, l)
		}
	}
	return nil
}

func (r *Recorder) Layers() []*Layer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Layer(nil), r.layers...)
}

// LayerDoc：单个图层的声明式描述
type LayerDoc struct {
	Index         int          `json:"index"`
	ModernName    string       `json:"modernName"`
	AlternateName string       `json:"alternateName"`
	Tooltip       string       `json:"tooltip"`
	Style         binder.Style `json:"style"`
	HoverStyle    binder.Style `json:"hoverStyle"`
}

// Document：与 /realms 要素顺序一一对应的图层文档
type Document struct {
	Layers []LayerDoc `json:"layers"`
}

// 文档注释：编译图层文档
// 背景：浏览器端渲染面无法执行 Go 回调；此处在记录面上挂载绑定并驱动一次进入/离开，得到默认与强调样式对。
// 约束：离开后样式必须回到挂载时的默认值，否则返回 ErrAsymmetric。
func Compile(c *realm.Collection) (*Document, error) {
	rec := NewRecorder()
	if _, err := binder.Mount(rec, c); err != nil {
		return nil, err
	}
	layers := rec.Layers()
	doc := &Document{Layers: make([]LayerDoc, 0, len(layers))}
	for _, l := range layers {
		base := l.Style()
		l.Hover()
		hover := l.Style()
		l.Unhover()
		if l.Style() != base {
			return nil, fmt.Errorf("%w: layer %d", ErrAsymmetric, l.Index())
		}
		doc.Layers = append(doc.Layers, LayerDoc{
			Index:         l.Index(),
			ModernName:    l.feature.ModernName(),
			AlternateName: l.feature.AlternateName(),
			Tooltip:       l.Tooltip(),
			Style:         base,
			HoverStyle:    hover,
		})
	}
	return doc, nil
}
