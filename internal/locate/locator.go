package locate

import (
	"math"
	"sync/atomic"
	"time"

	"realm-map/internal/metrics"
	"realm-map/internal/realm"
)

// 缓存键精度：8 位 geohash 约 38m × 19m
const geohashPrecision = 8

// 文档注释：点查询索引
// 背景：包围盒粗筛 → Even-Odd 精确判定；按集合顺序返回第一个命中要素。
// 约束：构建后只读；集合中无几何或几何类型不支持的要素不会被命中。
type Locator struct {
	units []unit
	kd    *kdNode
	cache *lru
}

func New(c *realm.Collection, cacheSize int, ttl time.Duration) *Locator {
	l := &Locator{cache: newLRU(cacheSize, ttl)}
	if c == nil {
		return l
	}
	for i, f := range c.Features {
		polys := parseGeometry(f.Geometry)
		if len(polys) == 0 {
			continue
		}
		l.units = append(l.units, unit{
			match: Match{Index: i, ModernName: f.ModernName(), AlternateName: f.AlternateName()},
			polys: polys,
		})
	}
	var cs []centroid
	for i, u := range l.units {
		for _, p := range u.polys {
			if len(p.Rings) == 0 {
				continue
			}
			if c, ok := ringCentroid(p.Rings[0]); ok {
				cs = append(cs, centroid{pt: c, unit: i})
			}
		}
	}
	l.kd = buildKD(cs, 0)
	return l
}

// Size：可参与点查询的要素数
func (l *Locator) Size() int { return len(l.units) }

// Query：返回包含该坐标的区域
func (l *Locator) Query(lat, lon float64) (Match, bool) {
	key := encodeGeohash(lat, lon, geohashPrecision)
	if m, ok, hit := l.cache.get(key); hit {
		metrics.LocateCacheHitsTotal.Inc()
		return m, ok
	}
	pt := Point{Lat: lat, Lon: lon}
	for _, u := range l.units {
		for _, p := range u.polys {
			if p.contains(pt) {
				l.cache.set(key, u.match, true)
				return u.match, true
			}
		}
	}
	l.cache.set(key, Match{}, false)
	return Match{}, false
}

// 文档注释：最近区域兜底
// 背景：先做精确查询；未命中时取最近多边形质心所属区域，距离超过 maxKm 视为未命中。
// 返回：兜底结果 Approx=true 并携带距离；maxKm<=0 表示不做兜底。
func (l *Locator) Nearest(lat, lon, maxKm float64) (Match, bool) {
	if m, ok := l.Query(lat, lon); ok {
		return m, true
	}
	if maxKm <= 0 || l.kd == nil {
		return Match{}, false
	}
	c, d, ok := nearest(l.kd, Point{Lat: lat, Lon: lon})
	if !ok || d > maxKm {
		return Match{}, false
	}
	m := l.units[c.unit].match
	m.Approx = true
	m.DistanceKm = math.Round(d*10) / 10
	return m, true
}

// 文档注释：可热切换的索引持有者
// 背景：就绪集合变化时整体替换索引；读路径通过 atomic.Pointer 无锁读取。
// 约束：未设置时查询一律未命中。
type Dynamic struct{ p atomic.Pointer[Locator] }

func (d *Dynamic) Set(l *Locator) { d.p.Store(l) }

func (d *Dynamic) Query(lat, lon float64) (Match, bool) {
	l := d.p.Load()
	if l == nil {
		return Match{}, false
	}
	return l.Query(lat, lon)
}

func (d *Dynamic) Nearest(lat, lon, maxKm float64) (Match, bool) {
	l := d.p.Load()
	if l == nil {
		return Match{}, false
	}
	return l.Nearest(lat, lon, maxKm)
}
