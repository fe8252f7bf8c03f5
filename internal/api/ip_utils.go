package api

import (
	"net"
	"net/http"
	"strings"
)

// 文档注释：获取访问者 IP（用于 GeoIP 定位初始视野）
// 背景：多层代理环境下，优先显式参数，其次常见反向代理头，最后回退远端地址。
// 约束：头部存在伪造风险；结果只影响初始中心点，不参与任何鉴权。
func getClientIP(r *http.Request) string {
	if q := strings.TrimSpace(r.URL.Query().Get("ip")); q != "" {
		return q
	}
	h := r.Header
	if x := h.Get("x-forwarded-for"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	for _, k := range []string{"cf-connecting-ip", "x-real-ip", "x-client-ip"} {
		if x := h.Get(k); x != "" {
			return strings.TrimSpace(x)
		}
	}
	if x := h.Get("forwarded"); x != "" {
		if y, ok := forwardedFor(x); ok {
			return y
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// forwardedFor：解析 RFC 7239 Forwarded 头的第一个 for= 值
func forwardedFor(v string) (string, bool) {
	i := strings.Index(strings.ToLower(v), "for=")
	if i < 0 {
		return "", false
	}
	y := v[i+4:]
	if p := strings.IndexByte(y, ';'); p >= 0 {
		y = y[:p]
	}
	if p := strings.IndexByte(y, ','); p >= 0 {
		y = y[:p]
	}
	y = strings.Trim(y, "\" ")
	// [2001:db8::1]:4711 形式
	if strings.HasPrefix(y, "[") {
		if p := strings.IndexByte(y, ']'); p > 0 {
			return y[1:p], true
		}
	}
	if host, _, err := net.SplitHostPort(y); err == nil {
		return host, true
	}
	return y, y != ""
}
