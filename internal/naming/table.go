// 包 naming：现代地名 → 古代（异时代）名称的只读映射表
package naming

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateName：同一份表定义中出现重复键
var ErrDuplicateName = errors.New("duplicate modern name")

// Entry：一条映射（现代名 → 古名）
type Entry struct {
	Modern    string `json:"modern"`
	Alternate string `json:"alternate"`
}

// Lookuper：按现代名查找古名；缺失为正常结果而非错误
type Lookuper interface {
	Lookup(modern string) (string, bool)
}

// 文档注释：只读映射表
// 背景：进程级构建一次，之后不再修改；并发读取无需加锁。
// 约束：大小写敏感、精确匹配；运行期不可更新，需要变更时构建新表。
type Table struct {
	m map[string]string
}

// 文档注释：由条目列表构建映射表
// 背景：字面量表中的重复键若按后写覆盖处理则含义不明；构建期直接报错，由调用方修正数据。
// 异常：键为空或重复时返回错误（wrap ErrDuplicateName）。
func Build(entries []Entry) (*Table, error) {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Modern == "" || e.Alternate == "" {
			return nil, fmt.Errorf("naming entry %q -> %q: empty field", e.Modern, e.Alternate)
		}
		if prev, ok := m[e.Modern]; ok {
			return nil, fmt.Errorf("%w: %q (%q vs %q)", ErrDuplicateName, e.Modern, prev, e.Alternate)
		}
		m[e.Modern] = e.Alternate
	}
	return &Table{m: m}, nil
}

// MustBuild：Build 的 panic 版本，仅用于包级字面量
func MustBuild(entries []Entry) *Table {
	t, err := Build(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// 文档注释：叠加覆盖层
// 背景：数据库中的覆盖条目在启动时读取一次，显式覆盖内置表；覆盖层内部仍禁止重复键。
// 返回：新表；base 不被修改。
func Overlay(base *Table, entries []Entry) (*Table, error) {
	over, err := Build(entries)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, base.Len()+over.Len())
	for k, v := range base.m {
		m[k] = v
	}
	for k, v := range over.m {
		m[k] = v
	}
	return &Table{m: m}, nil
}

// Lookup：精确匹配查找
func (t *Table) Lookup(modern string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.m[modern]
	return v, ok
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.m)
}

// Entries：按现代名排序的条目副本
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, 0, len(t.m))
	for k, v := range t.m {
		out = append(out, Entry{Modern: k, Alternate: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Modern < out[j].Modern })
	return out
}
