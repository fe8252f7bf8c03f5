// 包 lifecycle：数据集加载生命周期（未激活/加载中/错误/就绪）与解除订阅后的结果丢弃
package lifecycle

import "realm-map/internal/realm"

// Kind：生命周期状态标签
type Kind int

const (
	Uninitialized Kind = iota
	Loading
	Failed
	Ready
)

func (k Kind) String() string {
	switch k {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Failed:
		return "error"
	case Ready:
		return "ready"
	}
	return "unknown"
}

var allKinds = []Kind{Uninitialized, Loading, Failed, Ready}

// 文档注释：生命周期状态（标签联合）
// 约束：Message 仅在 Failed 时有值，Regions 仅在 Ready 时非空；Regions 视为只读，调用方不得修改。
type State struct {
	Kind    Kind
	Message string
	Regions *realm.Collection
}

func UninitializedState() State { return State{Kind: Uninitialized} }
func LoadingState() State       { return State{Kind: Loading} }
func ErrorState(msg string) State {
	return State{Kind: Failed, Message: msg}
}
func ReadyState(c *realm.Collection) State { return State{Kind: Ready, Regions: c} }

// Terminal：Ready 与 Failed 为单次激活的终态
func (s State) Terminal() bool { return s.Kind == Ready || s.Kind == Failed }
