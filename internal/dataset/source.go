// 包 dataset：区域数据集的固定来源（HTTP 或本地文件），附带可选的 Redis 响应体缓存
package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"realm-map/internal/logger"
	"realm-map/internal/metrics"
	"realm-map/internal/realm"
)

// 单次读取上限，防止异常大响应占满内存
const maxBodyBytes = 64 << 20

// BodySource：原始字节来源
type BodySource interface {
	Body(ctx context.Context) ([]byte, error)
	Location() string
}

// StatusError：非 2xx 响应，携带状态文本作为用户可见的错误来源
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return "unexpected status " + e.Status
	}
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// 文档注释：HTTP 数据源
// 背景：对齐外部插件的 HTTP 契约处理方式：非 200 视为失败，错误原样返回由上层决定展示。
// 约束：不重试；超时由调用方传入的 client 决定（0 表示不设超时）。
type HTTPSource struct {
	url    string
	client *http.Client
}

func NewHTTP(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPSource{url: url, client: client}
}

func (s *HTTPSource) Location() string { return s.url }

func (s *HTTPSource) Body(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/geo+json, application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// FileSource：本地 GeoJSON 文件
type FileSource struct{ path string }

func NewFile(path string) *FileSource { return &FileSource{path: path} }

func (s *FileSource) Location() string { return s.path }

func (s *FileSource) Body(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxBodyBytes))
}

// 文档注释：拉取并解析为区域集合
// 背景：统一计量拉取次数/失败/耗时；解析失败视同拉取失败，wrap realm.ErrMalformed。
// 约束：配置了缓存时先读缓存；缓存字节解析失败则删除后回源；只有解析成功的回源结果才写回缓存。
type Loader struct {
	src   BodySource
	cache *BodyCache
}

func NewLoader(src BodySource) *Loader { return &Loader{src: src} }

// WithCache：挂载响应体缓存；c 为 nil 时保持直连
func (l *Loader) WithCache(c *BodyCache) *Loader {
	l.cache = c
	return l
}

func (l *Loader) Location() string { return l.src.Location() }

func (l *Loader) Fetch(ctx context.Context) (*realm.Collection, error) {
	if b, ok := l.cache.Get(ctx, l.src.Location()); ok {
		c, err := realm.Decode(bytes.NewReader(b))
		if err == nil {
			logger.L().Debug("dataset_fetch_ok", "src", l.src.Location(), "features", c.Len(), "bytes", len(b), "cached", true)
			return c, nil
		}
		logger.L().Error("dataset_cache_malformed", "src", l.src.Location(), "err", err)
		l.cache.Drop(ctx, l.src.Location())
	}
	t0 := time.Now()
	metrics.DatasetFetchTotal.Inc()
	b, err := l.src.Body(ctx)
	metrics.DatasetFetchDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.DatasetFetchFailTotal.WithLabelValues("transport").Inc()
		logger.L().Debug("dataset_fetch_error", "src", l.src.Location(), "err", err)
		return nil, err
	}
	c, err := realm.Decode(bytes.NewReader(b))
	if err != nil {
		metrics.DatasetFetchFailTotal.WithLabelValues("malformed").Inc()
		logger.L().Debug("dataset_decode_error", "src", l.src.Location(), "err", err)
		return nil, err
	}
	l.cache.Put(ctx, l.src.Location(), b)
	logger.L().Debug("dataset_fetch_ok", "src", l.src.Location(), "features", c.Len(), "bytes", len(b))
	return c, nil
}

// 文档注释：按配置选择数据源
// 背景：优先 URL（http/https），否则本地路径；timeout<=0 表示不设超时，由网络层自行处理。
func FromConfig(url, path string, timeout time.Duration) BodySource {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		c := &http.Client{}
		if timeout > 0 {
			c.Timeout = timeout
		}
		return NewHTTP(url, c)
	}
	return NewFile(path)
}
