// 包 locate：坐标 → 区域（古名/现代名）查询；基于就绪集合构建的只读索引
package locate

// Point：WGS84 坐标
type Point struct {
	Lat float64
	Lon float64
}

// Polygon：GeoJSON 环集合，第一环为外环，其余为洞
type Polygon struct {
	Rings [][]Point
	BBox  [4]float64 // minLon, minLat, maxLon, maxLat
	// Wrapped：跨越 ±180 经线，经度已平移到 [0,360)
	Wrapped bool
}

// Match：命中结果
type Match struct {
	Index         int    `json:"index"`
	ModernName    string `json:"modernName"`
	AlternateName string `json:"alternateName"`
	// Approx：非多边形命中，由最近质心兜底
	Approx     bool    `json:"approx,omitempty"`
	DistanceKm float64 `json:"distanceKm,omitempty"`
}

type unit struct {
	match Match
	polys []Polygon
}
