// 包 api：集中注册 HTTP API 路由以解耦主入口；对外发布就绪集合、图层文档、视野参数与点查询
package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"realm-map/internal/lifecycle"
	"realm-map/internal/locate"
	"realm-map/internal/logger"
	"realm-map/internal/naming"
	"realm-map/internal/realm"
	"realm-map/internal/shell"
	"realm-map/internal/surface"
	"realm-map/internal/viewport"
)

// Options：服务依赖
type Options struct {
	Controller *lifecycle.Controller
	Names      *naming.Table
	View       *viewport.Resolver
	Page       *shell.Renderer
	APIBase    string
	AdminToken string
	// BaseContext：管理端重新加载使用的上下文，不随单个请求结束而取消
	BaseContext     context.Context
	LocateCacheSize int
	LocateCacheTTL  time.Duration
	// NearestKm：最近区域兜底的最大距离；<=0 时使用 300
	NearestKm float64
}

// derived：由某个就绪集合派生出的只读产物
type derived struct {
	regions *realm.Collection
	doc     *surface.Document
	err     error
}

// 文档注释：API 服务
// 背景：订阅生命周期控制器，在集合就绪时一次性编译图层文档并重建点查询索引；请求路径只读快照。
// 约束：快照与当前状态不一致时（通知尚未到达）在请求路径上补建，保证 Ready 后立即可用。
type Service struct {
	opts  Options
	log   *slog.Logger
	cur   atomic.Pointer[derived]
	loc   locate.Dynamic
	unsub func()
}

func NewService(o Options) *Service {
	if o.APIBase == "" {
		o.APIBase = "/api"
	}
	if o.BaseContext == nil {
		o.BaseContext = context.Background()
	}
	if o.NearestKm <= 0 {
		o.NearestKm = 300
	}
	if o.View == nil {
		o.View = viewport.NewResolver(viewport.Defaults(), nil)
	}
	if o.Names == nil {
		o.Names = naming.Builtin()
	}
	s := &Service{opts: o, log: logger.L().With("component", "api")}
	s.unsub = o.Controller.Subscribe(s.onState)
	s.onState(o.Controller.State())
	return s
}

// Close：取消订阅
func (s *Service) Close() {
	if s.unsub != nil {
		s.unsub()
	}
}

func (s *Service) onState(st lifecycle.State) {
	switch {
	case st.Kind == lifecycle.Ready && st.Regions != nil:
		s.publish(st.Regions)
	case st.Kind == lifecycle.Loading:
		s.cur.Store(nil)
		s.loc.Set(nil)
	}
}

func (s *Service) publish(c *realm.Collection) *derived {
	t0 := time.Now()
	d := &derived{regions: c}
	d.doc, d.err = surface.Compile(c)
	if d.err != nil {
		s.log.Error("layers_compile_error", "err", d.err)
	}
	l := locate.New(c, s.opts.LocateCacheSize, s.opts.LocateCacheTTL)
	s.cur.Store(d)
	s.loc.Set(l)
	s.log.Info("regions_published", "features", c.Len(), "locatable", l.Size(), "ms", time.Since(t0).Milliseconds())
	return d
}

// snapshot：当前状态与其派生产物；非就绪时 d 为 nil
func (s *Service) snapshot() (lifecycle.State, *derived) {
	st := s.opts.Controller.State()
	if st.Kind != lifecycle.Ready || st.Regions == nil {
		return st, nil
	}
	d := s.cur.Load()
	if d == nil || d.regions != st.Regions {
		d = s.publish(st.Regions)
	}
	return st, d
}
