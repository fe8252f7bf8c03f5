package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"realm-map/internal/logger"
	"realm-map/internal/metrics"
	"realm-map/internal/naming"
	"realm-map/internal/realm"
)

// GenericFailure：错误来源无可读描述时的兜底文案
const GenericFailure = "Failed to load map data."

// Fetcher：原始数据集的一次性拉取
type Fetcher interface {
	Fetch(ctx context.Context) (*realm.Collection, error)
}

// FetcherFunc：函数适配器
type FetcherFunc func(ctx context.Context) (*realm.Collection, error)

func (f FetcherFunc) Fetch(ctx context.Context) (*realm.Collection, error) { return f(ctx) }

// 文档注释：加载生命周期控制器
// 背景：激活时发起唯一一次拉取，成功后先富化再发布 Ready；失败转 Error；结果只在当前激活仍然有效时才写入。
// 约束：
// 1) 每次激活分配递增的代号（generation），Deactivate 使代号失效并取消激活上下文；携带旧代号的转换一律丢弃；
// 2) 已激活时重复 Activate 不会发起第二次拉取；
// 3) Ready/Error 为终态，不自动重试，需重新激活；
// 4) 订阅回调按转换顺序串行调用，调用时不持有内部锁；回调 panic 只记录日志，不中断投递。
type Controller struct {
	fetcher Fetcher
	table   naming.Lookuper
	log     *slog.Logger

	mu       sync.Mutex
	state    State
	gen      uint64
	attached bool
	cancel   context.CancelFunc
	subs     map[int]func(State)
	nextSub  int
	pending  []State
	draining bool
}

func New(f Fetcher, table naming.Lookuper) *Controller {
	c := &Controller{
		fetcher: f,
		table:   table,
		log:     logger.L().With("component", "lifecycle"),
		state:   UninitializedState(),
		subs:    make(map[int]func(State)),
	}
	recordState(c.state.Kind)
	return c
}

// State：当前状态快照
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attached：消费方是否仍处于订阅状态
func (c *Controller) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attached
}

// 文档注释：订阅状态变化
// 返回：取消函数；取消后不再收到回调。
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// 文档注释：激活（挂载）
// 背景：转为 Loading 并在独立协程中发起一次拉取；ctx 取消或 Deactivate 都会取消拉取上下文。
// 返回：false 表示已处于激活状态，本次调用未发起拉取。
func (c *Controller) Activate(ctx context.Context) bool {
	c.mu.Lock()
	if c.attached {
		c.mu.Unlock()
		c.log.Debug("lifecycle_activate_ignored", "reason", "already_active")
		return false
	}
	c.gen++
	token := c.gen
	c.attached = true
	actx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.log.Info("lifecycle_activate", "generation", token)
	// 拉取协程先于通知启动；其首次转换需要 c.mu，必然排在 Loading 之后
	go c.run(actx, token)
	c.applyAndNotify(LoadingState())
	return true
}

// 文档注释：解除激活（卸载）
// 背景：之后到达的任何结果都被丢弃，状态停留在解除时刻的值。
func (c *Controller) Deactivate() {
	c.mu.Lock()
	if !c.attached {
		c.mu.Unlock()
		return
	}
	c.attached = false
	c.gen++
	cancel := c.cancel
	c.cancel = nil
	st := c.state.Kind
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.log.Info("lifecycle_deactivate", "state", st.String())
}

// Reload：解除后重新激活，开始一次全新的独立尝试
func (c *Controller) Reload(ctx context.Context) bool {
	c.Deactivate()
	return c.Activate(ctx)
}

func (c *Controller) run(ctx context.Context, token uint64) {
	t0 := time.Now()
	raw, err := c.fetch(ctx)
	if err != nil {
		c.log.Error("lifecycle_fetch_error", "generation", token, "err", err, "ms", time.Since(t0).Milliseconds())
		c.transition(token, ErrorState(FailureMessage(err)))
		return
	}
	if !c.current(token) {
		c.discard(token, Ready)
		return
	}
	enriched := realm.Enrich(raw, c.table)
	st := realm.Summarize(enriched, c.table)
	if c.transition(token, ReadyState(enriched)) {
		metrics.EnrichedFeatures.WithLabelValues("mapped").Set(float64(st.Mapped))
		metrics.EnrichedFeatures.WithLabelValues("unmapped").Set(float64(st.Unmapped))
		c.log.Info("lifecycle_ready", "generation", token, "features", st.Total, "mapped", st.Mapped, "unmapped", st.Unmapped, "unknown", st.Unknown, "ms", time.Since(t0).Milliseconds())
	}
}

// fetch：拉取异常（panic）同样转为错误，不向上传播
func (c *Controller) fetch(ctx context.Context) (raw *realm.Collection, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("lifecycle_fetch_panic", "panic", r)
			raw, err = nil, fmt.Errorf("fetch panic: %v", r)
		}
	}()
	return c.fetcher.Fetch(ctx)
}

func (c *Controller) current(token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attached && token == c.gen
}

// 文档注释：带代号的状态转换
// 返回：false 表示代号已失效（已解除或有更新的激活），结果被丢弃。
func (c *Controller) transition(token uint64, s State) bool {
	c.mu.Lock()
	if !c.attached || token != c.gen {
		c.mu.Unlock()
		c.discard(token, s.Kind)
		return false
	}
	if c.cancel != nil && s.Terminal() {
		c.cancel()
		c.cancel = nil
	}
	c.applyAndNotify(s)
	return true
}

func (c *Controller) discard(token uint64, k Kind) {
	metrics.StaleDiscardedTotal.Inc()
	c.log.Debug("lifecycle_stale_discarded", "generation", token, "target", k.String())
}

// 调用前需持有 c.mu；返回前释放 c.mu。
// 通知进入队列，由当前排空者按转换顺序投递；投递期间不持有锁，回调可读取 State 或触发新的转换
func (c *Controller) applyAndNotify(s State) {
	c.state = s
	recordState(s.Kind)
	c.pending = append(c.pending, s)
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	for len(c.pending) > 0 {
		batch := c.pending
		c.pending = nil
		subs := make([]func(State), 0, len(c.subs))
		for _, fn := range c.subs {
			subs = append(subs, fn)
		}
		c.mu.Unlock()
		for _, st := range batch {
			for _, fn := range subs {
				c.deliver(fn, st)
			}
		}
		c.mu.Lock()
	}
	c.draining = false
	c.mu.Unlock()
}

// deliver：单个订阅者异常只记录日志，不影响其他订阅者与后续通知
func (c *Controller) deliver(fn func(State), s State) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("lifecycle_subscriber_panic", "state", s.Kind.String(), "panic", r)
		}
	}()
	fn(s)
}

func recordState(k Kind) {
	for _, x := range allKinds {
		v := 0.0
		if x == k {
			v = 1
		}
		metrics.LifecycleState.WithLabelValues(x.String()).Set(v)
	}
	metrics.LifecycleTransitionsTotal.WithLabelValues(k.String()).Inc()
}

// 文档注释：将拉取错误转为用户可见文案
// 约束：有可读描述时附带来源描述，否则返回 GenericFailure。
func FailureMessage(err error) string {
	if err == nil {
		return GenericFailure
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return GenericFailure
	}
	return "Failed to load map data: " + msg
}
