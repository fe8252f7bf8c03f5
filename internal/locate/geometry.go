package locate

import (
	"encoding/json"
	"math"
	"strings"
)

// 文档注释：解析要素几何为多边形列表
// 约束：仅支持 Polygon/MultiPolygon；其他类型或解析失败返回空（该要素不参与点查询，但仍保留在集合中）。
func parseGeometry(raw json.RawMessage) []Polygon {
	if len(raw) == 0 {
		return nil
	}
	var g struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil
	}
	var parts [][][][]float64
	switch strings.ToLower(g.Type) {
	case "polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil
		}
		parts = [][][][]float64{rings}
	case "multipolygon":
		if err := json.Unmarshal(g.Coordinates, &parts); err != nil {
			return nil
		}
	default:
		return nil
	}
	out := make([]Polygon, 0, len(parts))
	for _, rings := range parts {
		if p, ok := newPolygon(rings); ok {
			out = append(out, p)
		}
	}
	return out
}

// 文档注释：由 GeoJSON 坐标环构建多边形
// 背景：部分国界（斐济、楚科奇等）在同一环内跨越 ±180 经线，相邻顶点经度跳变超过 180。
// 约束：外环跳变次数为偶数（跨过去又跨回来）时整体平移到 [0,360) 并标记 Wrapped；奇数次为南极这类绕极环，保持原样。外环不足三点视为无效。
func newPolygon(rings [][][]float64) (Polygon, bool) {
	var p Polygon
	for _, ring := range rings {
		rr := make([]Point, 0, len(ring))
		for _, c := range ring {
			if len(c) >= 2 {
				rr = append(rr, Point{Lat: c[1], Lon: c[0]})
			}
		}
		p.Rings = append(p.Rings, rr)
	}
	if len(p.Rings) == 0 || len(p.Rings[0]) < 3 {
		return Polygon{}, false
	}
	if n := antimeridianJumps(p.Rings[0]); n > 0 && n%2 == 0 {
		p.Wrapped = true
		for _, r := range p.Rings {
			for i := range r {
				r[i].Lon = shiftEast(r[i].Lon)
			}
		}
	}
	p.BBox = bounds(p.Rings[0])
	return p, true
}

func antimeridianJumps(ring []Point) int {
	n := 0
	for i := 1; i < len(ring); i++ {
		if math.Abs(ring[i].Lon-ring[i-1].Lon) > 180 {
			n++
		}
	}
	return n
}

func shiftEast(lon float64) float64 {
	if lon < 0 {
		return lon + 360
	}
	return lon
}

// 洞必在外环内，外接框只看外环
func bounds(ring []Point) [4]float64 {
	b := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, pt := range ring {
		b[0] = math.Min(b[0], pt.Lon)
		b[1] = math.Min(b[1], pt.Lat)
		b[2] = math.Max(b[2], pt.Lon)
		b[3] = math.Max(b[3], pt.Lat)
	}
	return b
}

// 文档注释：点是否落在多边形内（外环内且不在任何洞内）
func (p Polygon) contains(pt Point) bool {
	if p.Wrapped {
		pt.Lon = shiftEast(pt.Lon)
	}
	if pt.Lon < p.BBox[0] || pt.Lon > p.BBox[2] || pt.Lat < p.BBox[1] || pt.Lat > p.BBox[3] {
		return false
	}
	if winding(pt, p.Rings[0]) == 0 {
		return false
	}
	for _, hole := range p.Rings[1:] {
		if winding(pt, hole) != 0 {
			return false
		}
	}
	return true
}

// 环绕数；与环的方向无关，非零即在环内
func winding(pt Point, ring []Point) int {
	wn := 0
	n := len(ring)
	if n < 3 {
		return 0
	}
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		switch {
		case a.Lat <= pt.Lat && b.Lat > pt.Lat && side(a, b, pt) > 0:
			wn++
		case a.Lat > pt.Lat && b.Lat <= pt.Lat && side(a, b, pt) < 0:
			wn--
		}
	}
	return wn
}

// >0 表示 pt 在有向边 a→b 左侧
func side(a, b, pt Point) float64 {
	return (b.Lon-a.Lon)*(pt.Lat-a.Lat) - (pt.Lon-a.Lon)*(b.Lat-a.Lat)
}

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// 文档注释：geohash 编码，仅用作查询缓存键
// 背景：经纬度各自量化为整数后按位交织（经度在前），每 5 位映射一个字符，与逐次二分的结果一致。
func encodeGeohash(lat, lon float64, precision int) string {
	if precision <= 0 {
		return ""
	}
	if precision > 12 {
		precision = 12
	}
	total := uint(precision * 5)
	lonBits, latBits := (total+1)/2, total/2
	x := quantize(lon, -180, 180, lonBits)
	y := quantize(lat, -90, 90, latBits)

	var code uint64
	for i := uint(0); i < total; i++ {
		var bit uint64
		if i%2 == 0 {
			bit = x >> (lonBits - 1 - i/2) & 1
		} else {
			bit = y >> (latBits - 1 - i/2) & 1
		}
		code = code<<1 | bit
	}
	out := make([]byte, precision)
	for i := precision - 1; i >= 0; i-- {
		out[i] = geohashAlphabet[code&31]
		code >>= 5
	}
	return string(out)
}

func quantize(v, lo, hi float64, bits uint) uint64 {
	cells := uint64(1) << bits
	f := (v - lo) / (hi - lo)
	if f <= 0 {
		return 0
	}
	q := uint64(f * float64(cells))
	if q >= cells {
		q = cells - 1
	}
	return q
}
