package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
)

// 文档注释：管理端来源白名单（IP/CIDR）
// 背景：重新加载等管理接口除令牌外再按来源地址收窄；未配置任何条目时不做限制。
// 约束：支持 IPv4/IPv6 CIDR；来源 IP 以 RemoteAddr 为准，指定 realIPHeader 时取该头首个有效 IP。
type Allowlist struct {
	l            *slog.Logger
	ips          map[string]struct{}
	cidrs        []*net.IPNet
	realIPHeader string
}

// NewAllowlist：ips 与 cidrs 为逗号分隔列表；非法条目忽略
func NewAllowlist(l *slog.Logger, ips, cidrs, realIPHeader string) *Allowlist {
	a := &Allowlist{l: l, ips: map[string]struct{}{}, realIPHeader: strings.TrimSpace(realIPHeader)}
	for _, p := range strings.Split(ips, ",") {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			a.ips[ip.String()] = struct{}{}
		}
	}
	for _, c := range strings.Split(cidrs, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, n, err := net.ParseCIDR(c); err == nil {
			a.cidrs = append(a.cidrs, n)
		} else {
			l.Error("admin_allowlist_bad_cidr", "cidr", c, "err", err)
		}
	}
	return a
}

// 文档注释：按环境变量构建
// ADMIN_ALLOW_IPS=1.2.3.4,5.6.7.8
// ADMIN_ALLOW_CIDRS=10.0.0.0/8,fd00::/8
// ADMIN_REAL_IP_HEADER=X-Forwarded-For
func NewAllowlistFromEnv(l *slog.Logger) *Allowlist {
	return NewAllowlist(l, os.Getenv("ADMIN_ALLOW_IPS"), os.Getenv("ADMIN_ALLOW_CIDRS"), os.Getenv("ADMIN_REAL_IP_HEADER"))
}

// Empty：未配置任何条目
func (a *Allowlist) Empty() bool { return len(a.ips) == 0 && len(a.cidrs) == 0 }

func (a *Allowlist) Allowed(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if _, ok := a.ips[ip.String()]; ok {
		return true
	}
	for _, n := range a.cidrs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func (a *Allowlist) Wrap(next http.Handler) http.Handler {
	if a.Empty() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := a.extractIP(r)
		if !a.Allowed(ip) {
			a.l.Debug("admin_allowlist_block", "ip", r.RemoteAddr, "path", r.URL.Path)
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Allowlist) extractIP(r *http.Request) net.IP {
	if a.realIPHeader != "" {
		if raw := r.Header.Get(a.realIPHeader); raw != "" {
			first := strings.TrimSpace(strings.Split(raw, ",")[0])
			if ip := net.ParseIP(first); ip != nil {
				return ip
			}
		}
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return net.ParseIP(host)
}
