package api

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"realm-map/internal/lifecycle"
	"realm-map/internal/locate"
	"realm-map/internal/metrics"
	"realm-map/internal/shell"
	"realm-map/internal/version"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func notReady(w http.ResponseWriter, st lifecycle.State) {
	msg := "regions not ready"
	if st.Kind == lifecycle.Failed {
		msg = st.Message
	}
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: msg, State: st.Kind.String()})
}

func counted(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsTotal.WithLabelValues(route).Inc()
		h(w, r)
	}
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 API_BASE 前缀
func (s *Service) BuildRoutes() *http.ServeMux {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/state", counted("state", s.handleState))
	apiMux.HandleFunc("/realms", counted("realms", s.handleRealms))
	apiMux.HandleFunc("/layers", counted("layers", s.handleLayers))
	apiMux.HandleFunc("/map", counted("map", s.handleMap))
	apiMux.HandleFunc("/view", counted("view", s.handleView))
	apiMux.HandleFunc("/names", counted("names", s.handleNames))
	apiMux.HandleFunc("/locate", counted("locate", s.handleLocate))
	apiMux.HandleFunc("/reload", counted("reload", s.handleReload))
	return apiMux
}

func (s *Service) stateBody(st lifecycle.State) stateResponse {
	return stateResponse{
		State:    st.Kind.String(),
		View:     shell.Select(st).String(),
		Message:  st.Message,
		Features: st.Regions.Len(),
		Attached: s.opts.Controller.Attached(),
	}
}

func (s *Service) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stateBody(s.opts.Controller.State()))
}

func (s *Service) handleRealms(w http.ResponseWriter, r *http.Request) {
	st := s.opts.Controller.State()
	if st.Kind != lifecycle.Ready || st.Regions == nil {
		notReady(w, st)
		return
	}
	w.Header().Set("content-type", "application/geo+json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	_ = json.NewEncoder(w).Encode(st.Regions)
}

func (s *Service) handleLayers(w http.ResponseWriter, r *http.Request) {
	st, d := s.snapshot()
	if d == nil {
		notReady(w, st)
		return
	}
	if d.err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: d.err.Error(), State: st.Kind.String()})
		return
	}
	writeJSON(w, http.StatusOK, d.doc)
}

// 文档注释：集合与图层文档合并返回
// 背景：分两次请求时，中间若发生重新加载，集合与图层文档可能来自不同批次；此处取自同一快照。
func (s *Service) handleMap(w http.ResponseWriter, r *http.Request) {
	st, d := s.snapshot()
	if d == nil {
		notReady(w, st)
		return
	}
	if d.err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: d.err.Error(), State: st.Kind.String()})
		return
	}
	writeJSON(w, http.StatusOK, mapResponse{Realms: d.regions, Layers: d.doc.Layers})
}

func (s *Service) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.View.ForIP(getClientIP(r)))
}

func (s *Service) handleNames(w http.ResponseWriter, r *http.Request) {
	entries := s.opts.Names.Entries()
	out := namesResponse{Count: len(entries), Names: make([]nameRecord, 0, len(entries))}
	for _, e := range entries {
		out.Names = append(out.Names, nameRecord{Modern: e.Modern, Alternate: e.Alternate})
	}
	writeJSON(w, http.StatusOK, out)
}

// 文档注释：点查询
// 约束：lat ∈ [-90,90]，lon ∈ [-180,180]；未就绪 503；未命中 404。nearest=1 时允许最近区域兜底（NearestKm 以内）。
func (s *Service) handleLocate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err1 := strconv.ParseFloat(q.Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(q.Get("lon"), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lat/lon out of range"})
		return
	}
	st, d := s.snapshot()
	if d == nil {
		notReady(w, st)
		return
	}
	res := locateResponse{Lat: lat, Lon: lon}
	var m locate.Match
	var ok bool
	if v := q.Get("nearest"); v == "1" || v == "true" {
		m, ok = s.loc.Nearest(lat, lon, s.opts.NearestKm)
	} else {
		m, ok = s.loc.Query(lat, lon)
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, res)
		return
	}
	res.Found = true
	res.Realm = &m
	writeJSON(w, http.StatusOK, res)
}

// 文档注释：管理端重新加载
// 背景：解除当前激活并重新激活，对数据集发起一次全新拉取；旧拉取的结果被丢弃。
// 约束：仅 POST；x-admin-token 必须与 ADMIN_TOKEN 一致且非空。
func (s *Service) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	t := r.Header.Get("x-admin-token")
	if t == "" || t != s.opts.AdminToken {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	s.opts.Controller.Reload(s.opts.BaseContext)
	s.log.Info("admin_reload", "ip", getClientIP(r))
	writeJSON(w, http.StatusAccepted, s.stateBody(s.opts.Controller.State()))
}

// 文档注释：页面外壳
// 约束：只响应根路径；错误视图同样以 200 返回，由页面自身表达失败。
func (s *Service) HandlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	metrics.RequestsTotal.WithLabelValues("page").Inc()
	var buf bytes.Buffer
	v, err := s.opts.Page.Render(&buf, s.opts.Controller.State())
	if err != nil {
		s.log.Error("page_render_error", "view", v.String(), "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// NOTE: 向前端暴露 API 基础路径，避免硬编码
func (s *Service) HandleConfigJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("content-type", "application/javascript; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	_, _ = w.Write([]byte("window.__API_BASE__='" + template.JSEscapeString(s.opts.APIBase) + "'\n"))
	_, _ = w.Write([]byte("window.__COMMIT_SHA__='" + template.JSEscapeString(version.Commit) + "'\n"))
}
