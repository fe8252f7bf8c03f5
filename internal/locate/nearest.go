package locate

import "math"

// centroid：多边形外环顶点均值，指向所属要素
type centroid struct {
	pt   Point
	unit int
}

// 文档注释：KD-Tree 最近邻（二维经纬）
// 背景：点落在所有多边形之外（海上、数据缝隙）时提供最近区域兜底；由调用方限制最大半径避免误归属。
// 约束：按经度/纬度交替分割；经度方向剪枝按查询点纬度折算，属近似；仅支持最近一个点查询。
type kdNode struct {
	c  centroid
	ax int // 0:lon,1:lat
	l  *kdNode
	r  *kdNode
}

func buildKD(cs []centroid, depth int) *kdNode {
	if len(cs) == 0 {
		return nil
	}
	ax := depth % 2
	mid := len(cs) / 2
	selectNth(cs, mid, ax)
	node := &kdNode{c: cs[mid], ax: ax}
	node.l = buildKD(cs[:mid], depth+1)
	node.r = buildKD(cs[mid+1:], depth+1)
	return node
}

// 原地 nth 元素选择
func selectNth(a []centroid, n int, ax int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, (lo+hi)/2, ax)
		if p == n {
			return
		}
		if n < p {
			hi = p - 1
		} else {
			lo = p + 1
		}
	}
}

func partition(a []centroid, lo, hi, pivot, ax int) int {
	pv := a[pivot]
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if axisValue(a[j].pt, ax) < axisValue(pv.pt, ax) {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

func axisValue(p Point, ax int) float64 {
	if ax == 0 {
		return p.Lon
	}
	return p.Lat
}

// nearest：返回最近质心与距离（千米）；空树返回 ok=false
func nearest(node *kdNode, pt Point) (centroid, float64, bool) {
	best := centroid{}
	bestD := math.MaxFloat64
	found := false
	lonKm := 111.0 * math.Max(math.Cos(pt.Lat*math.Pi/180), 0.01)
	var dfs func(n *kdNode)
	dfs = func(n *kdNode) {
		if n == nil {
			return
		}
		d := haversine(pt.Lat, pt.Lon, n.c.pt.Lat, n.c.pt.Lon)
		if d < bestD {
			bestD, best, found = d, n.c, true
		}
		key, q := axisValue(pt, n.ax), axisValue(n.c.pt, n.ax)
		first, second := n.l, n.r
		if key > q {
			first, second = n.r, n.l
		}
		dfs(first)
		scale := 111.0
		if n.ax == 0 {
			scale = lonKm
		}
		// 分割平面到查询点的距离小于当前最优距离时才遍历另一侧
		if math.Abs(key-q)*scale < bestD {
			dfs(second)
		}
	}
	dfs(node)
	return best, bestD, found
}

// 球面距离（Haversine），返回千米
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return R * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func ringCentroid(ring []Point) (Point, bool) {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	if n == 0 {
		return Point{}, false
	}
	var c Point
	for _, p := range ring[:n] {
		c.Lat += p.Lat
		c.Lon += p.Lon
	}
	c.Lat /= float64(n)
	c.Lon /= float64(n)
	if c.Lon > 180 {
		c.Lon -= 360
	}
	return c, true
}
