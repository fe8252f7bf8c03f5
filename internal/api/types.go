package api

import (
	"realm-map/internal/locate"
	"realm-map/internal/realm"
	"realm-map/internal/surface"
)

// 文档注释：对外返回结构
// 约束：字段稳定；新增字段需评估前端脚本依赖。
type stateResponse struct {
	State    string `json:"state"`
	View     string `json:"view"`
	Message  string `json:"message,omitempty"`
	Features int    `json:"features"`
	Attached bool   `json:"attached"`
}

type namesResponse struct {
	Count int          `json:"count"`
	Names []nameRecord `json:"names"`
}

type nameRecord struct {
	Modern    string `json:"modern"`
	Alternate string `json:"alternate"`
}

type locateResponse struct {
	Found bool          `json:"found"`
	Lat   float64       `json:"lat"`
	Lon   float64       `json:"lon"`
	Realm *locate.Match `json:"realm,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	State string `json:"state,omitempty"`
}

// mapResponse：同一快照中的集合与图层文档，两者按下标一一对应
type mapResponse struct {
	Realms *realm.Collection `json:"realms"`
	Layers []surface.LayerDoc `json:"layers"`
}
