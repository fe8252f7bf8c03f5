// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"realm-map/internal/api"
	"realm-map/internal/dataset"
	"realm-map/internal/lifecycle"
	"realm-map/internal/logger"
	"realm-map/internal/metrics"
	"realm-map/internal/middleware"
	"realm-map/internal/migrate"
	"realm-map/internal/naming"
	"realm-map/internal/shell"
	"realm-map/internal/store"
	"realm-map/internal/utils"
	"realm-map/internal/version"
	"realm-map/internal/viewport"
)

func envSeconds(k string, def time.Duration) time.Duration {
	if s := os.Getenv(k); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}

// 文档注释：构建古名表
// 背景：内置表为基础；配置了 PostgreSQL 时读取覆盖表叠加（覆盖条目优先）。启动后冻结，运行期不再变化。
// 约束：数据库不可用时记录错误并回退内置表，不阻断启动。
func loadNames(ctx context.Context) *naming.Table {
	l := logger.L()
	base := naming.Builtin()
	if !utils.PostgresEnabled() {
		l.Info("names_overlay_disabled", "builtin", base.Len())
		return base
	}
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		return base
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		l.Error("db_ping_error", "err", err)
		return base
	}
	l.Info("db_ping_ok")
	if err := migrate.EnsureSchema(ctx, db); err != nil {
		l.Error("schema_error", "err", err)
		return base
	}
	entries, err := store.AttachDB(db).LoadNames(ctx)
	if err != nil {
		l.Error("names_overlay_load_error", "err", err)
		return base
	}
	t, err := naming.Overlay(base, entries)
	if err != nil {
		l.Error("names_overlay_error", "err", err)
		return base
	}
	l.Info("names_overlay_ok", "builtin", base.Len(), "overlay", len(entries), "total", t.Len())
	return t
}

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok", "commit", version.Commit)
	apiBase := os.Getenv("API_BASE")
	if apiBase == "" {
		apiBase = "/api"
	}
	l.Debug("config_api_base", "base", apiBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancelStart := context.WithTimeout(ctx, 15*time.Second)
	names := loadNames(startCtx)
	cancelStart()

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	// 数据集来源：DATASET_URL 优先，其次 DATASET_PATH
	dsPath := os.Getenv("DATASET_PATH")
	if dsPath == "" {
		dsPath = filepath.Join("data", "realms", "countries.geojson")
	}
	src := dataset.FromConfig(os.Getenv("DATASET_URL"), dsPath, envSeconds("DATASET_TIMEOUT_S", 0))
	loader := dataset.NewLoader(src).WithCache(dataset.NewBodyCache(rc, envSeconds("DATASET_CACHE_TTL_S", 6*time.Hour)))
	l.Info("config_dataset", "src", loader.Location(), "cached", rc != nil)

	ctl := lifecycle.New(loader, names)

	// 背景：配置了 GeoIP City 库时按访问者位置调整初始中心；失败不影响其余功能
	var cities viewport.CityLookup
	if gr, err := viewport.OpenGeoIP(os.Getenv("GEOIP_CITY_PATH")); err != nil {
		l.Error("geoip_open_error", "err", err)
	} else if gr != nil {
		defer gr.Close()
		cities = gr
		l.Info("geoip_ready")
	}
	view := viewport.NewResolver(viewport.FromEnv(), cities)

	opts := shell.DefaultOptions()
	opts.APIBase = apiBase
	if s := os.Getenv("MAP_TITLE"); s != "" {
		opts.Title = s
	}
	page, err := shell.NewRenderer(opts)
	if err != nil {
		l.Error("shell_template_error", "err", err)
		os.Exit(1)
	}

	locSize, _ := strconv.Atoi(os.Getenv("LOCATE_CACHE_SIZE"))
	nearestKm, _ := strconv.ParseFloat(os.Getenv("LOCATE_NEAREST_KM"), 64)
	svc := api.NewService(api.Options{
		Controller:      ctl,
		Names:           names,
		View:            view,
		Page:            page,
		APIBase:         apiBase,
		AdminToken:      os.Getenv("ADMIN_TOKEN"),
		BaseContext:     ctx,
		LocateCacheSize: locSize,
		LocateCacheTTL:  envSeconds("LOCATE_CACHE_TTL_S", time.Hour),
		NearestKm:       nearestKm,
	})
	defer svc.Close()

	// 文档注释：构建路由
	mux := http.NewServeMux()
	apiMux := svc.BuildRoutes()
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())
	mux.Handle(apiBase+"/reload", middleware.NewAllowlistFromEnv(l).Wrap(http.StripPrefix(apiBase, apiMux)))
	mux.HandleFunc("/config.js", svc.HandleConfigJS)
	mux.HandleFunc("/", svc.HandlePage)

	// 进程级激活：启动即拉取一次；关闭时解除激活，丢弃仍在途的结果
	ctl.Activate(ctx)
	defer ctl.Deactivate()

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		l.Info("shutdown_begin")
		ctl.Deactivate()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shCtx)
	}()

	if os.Getenv("TLS_ENABLE") == "true" {
		certPath := os.Getenv("TLS_CERT_PATH")
		keyPath := os.Getenv("TLS_KEY_PATH")
		if certPath == "" {
			certPath = filepath.Join("data", "certs", "server.crt")
		}
		if keyPath == "" {
			keyPath = filepath.Join("data", "certs", "server.key")
		}
		if err := utils.EnsureSelfSignedCert(certPath, keyPath, "realm-map.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		if err := s.ListenAndServeTLS(certPath, keyPath); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server_error", "err", err)
			os.Exit(1)
		}
		return
	}
	l.Info("listening", "addr", addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("shutdown_done")
}
