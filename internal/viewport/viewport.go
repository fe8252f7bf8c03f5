// 包 viewport：地图初始视图参数（底图模板、署名、中心点、缩放范围）
package viewport

import (
	"net"
	"os"
	"strconv"

	"github.com/oschwald/geoip2-golang"

	"realm-map/internal/logger"
)

// Center：中心点
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Params：交给渲染面的初始视图参数
type Params struct {
	TileURL     string `json:"tileURL"`
	Attribution string `json:"attribution"`
	Center      Center `json:"center"`
	Zoom        int    `json:"zoom"`
	MinZoom     int    `json:"minZoom"`
	MaxZoom     int    `json:"maxZoom"`
	Source      string `json:"source"`
}

// Defaults：以印度次大陆为中心的世界视图
func Defaults() Params {
	return Params{
		TileURL:     "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors",
		Center:      Center{Lat: 22, Lon: 78},
		Zoom:        3,
		MinZoom:     2,
		MaxZoom:     8,
		Source:      "default",
	}
}

// 文档注释：从环境变量读取视图参数
// 背景：TILE_URL/TILE_ATTRIBUTION/MAP_CENTER_LAT/MAP_CENTER_LON/MAP_ZOOM/MAP_MIN_ZOOM/MAP_MAX_ZOOM；解析失败保留默认值。
// 约束：缩放范围非法（min>max）时回退默认范围；初始缩放被夹在范围内。
func FromEnv() Params {
	p := Defaults()
	if s := os.Getenv("TILE_URL"); s != "" {
		p.TileURL = s
	}
	if s := os.Getenv("TILE_ATTRIBUTION"); s != "" {
		p.Attribution = s
	}
	p.Center.Lat = envFloat("MAP_CENTER_LAT", p.Center.Lat)
	p.Center.Lon = envFloat("MAP_CENTER_LON", p.Center.Lon)
	p.Zoom = envInt("MAP_ZOOM", p.Zoom)
	p.MinZoom = envInt("MAP_MIN_ZOOM", p.MinZoom)
	p.MaxZoom = envInt("MAP_MAX_ZOOM", p.MaxZoom)
	return p.normalize()
}

func (p Params) normalize() Params {
	d := Defaults()
	if p.MinZoom < 0 || p.MaxZoom > 22 || p.MinZoom > p.MaxZoom {
		p.MinZoom, p.MaxZoom = d.MinZoom, d.MaxZoom
	}
	if p.Zoom < p.MinZoom {
		p.Zoom = p.MinZoom
	}
	if p.Zoom > p.MaxZoom {
		p.Zoom = p.MaxZoom
	}
	if p.Center.Lat < -90 || p.Center.Lat > 90 || p.Center.Lon < -180 || p.Center.Lon > 180 {
		p.Center = d.Center
	}
	return p
}

func envFloat(k string, def float64) float64 {
	if s := os.Getenv(k); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return def
}

func envInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// CityLookup：GeoIP 城市库的最小接口（*geoip2.Reader 满足）
type CityLookup interface {
	City(ip net.IP) (*geoip2.City, error)
}

// 文档注释：按访问者 IP 调整中心点
// 背景：配置了 GeoLite2/GeoIP2 City 库时，把初始中心移到访问者所在位置；查询失败或无坐标时使用静态参数。
// 约束：只改变中心点，不改变缩放范围；db 为 nil 时等价于静态参数。
type Resolver struct {
	base Params
	db   CityLookup
}

func NewResolver(base Params, db CityLookup) *Resolver {
	return &Resolver{base: base, db: db}
}

// OpenGeoIP：打开 mmdb；路径为空返回 nil
func OpenGeoIP(path string) (*geoip2.Reader, error) {
	if path == "" {
		return nil, nil
	}
	return geoip2.Open(path)
}

func (r *Resolver) ForIP(ip string) Params {
	p := r.base
	if r.db == nil || ip == "" {
		return p
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return p
	}
	rec, err := r.db.City(parsed)
	if err != nil {
		logger.L().Debug("geoip_lookup_error", "ip", ip, "err", err)
		return p
	}
	if rec == nil || (rec.Location.Latitude == 0 && rec.Location.Longitude == 0) {
		return p
	}
	p.Center = Center{Lat: rec.Location.Latitude, Lon: rec.Location.Longitude}
	p.Source = "geoip"
	return p
}
