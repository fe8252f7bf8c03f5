// 包 shell：按生命周期状态选择并渲染四种互斥视图之一
package shell

import (
	"embed"
	"html/template"
	"io"

	"realm-map/internal/lifecycle"
)

//go:embed templates/*.html
var templateFS embed.FS

// View：互斥视图
type View int

const (
	ViewInactive View = iota
	ViewLoading
	ViewError
	ViewMap
)

func (v View) String() string {
	switch v {
	case ViewInactive:
		return "inactive"
	case ViewLoading:
		return "loading"
	case ViewError:
		return "error"
	case ViewMap:
		return "map"
	}
	return "unknown"
}

// 文档注释：视图选择（纯函数）
// 约束：仅由状态决定；Ready 但集合缺失时按未激活处理，不渲染空地图。
func Select(s lifecycle.State) View {
	switch s.Kind {
	case lifecycle.Loading:
		return ViewLoading
	case lifecycle.Failed:
		return ViewError
	case lifecycle.Ready:
		if s.Regions != nil {
			return ViewMap
		}
	}
	return ViewInactive
}

// Options：页面外壳的静态参数
type Options struct {
	Title          string
	APIBase        string
	LeafletCSS     string
	LeafletJS      string
	RefreshSeconds int
}

func DefaultOptions() Options {
	return Options{
		Title:          "Realms of the Ancient World",
		APIBase:        "/api",
		LeafletCSS:     "https://unpkg.com/leaflet@1.9.4/dist/leaflet.css",
		LeafletJS:      "https://unpkg.com/leaflet@1.9.4/dist/leaflet.js",
		RefreshSeconds: 2,
	}
}

type pageData struct {
	Options
	View    View
	Message string
}

// Renderer：HTML 视图渲染器
type Renderer struct {
	opts Options
	tpl  *template.Template
}

func NewRenderer(opts Options) (*Renderer, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if opts.RefreshSeconds <= 0 {
		opts.RefreshSeconds = 2
	}
	return &Renderer{opts: opts, tpl: tpl}, nil
}

// 文档注释：渲染当前状态对应的页面
// 约束：错误视图原样展示错误文案（HTML 转义），不输出任何地图标记；地图视图只输出容器与客户端脚本。
func (r *Renderer) Render(w io.Writer, s lifecycle.State) (View, error) {
	v := Select(s)
	d := pageData{Options: r.opts, View: v}
	if v == ViewError {
		d.Message = s.Message
	}
	return v, r.tpl.ExecuteTemplate(w, "page", d)
}
