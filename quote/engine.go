package quote

import (
	"errors"
	"math"
)

// DefaultBand 默认最小重报价阈值（0.10%）。
const DefaultBand = 0.0010

// Decision 单个槽位在一个周期的决策结果。
type Decision struct {
	// Place 为 false 表示该槽位本周期跳过（滞回带内）。
	Place bool
	// TargetPrice = 参考价 × spread 乘数，精确到 float64 本身的精度。
	TargetPrice float64
	// CancelExisting 仅由当前盘口上是否存在本账户挂单决定，
	// 与 LastPlaced 无关：内存状态与链上可能短暂不一致。
	CancelExisting bool
}

// Engine 报价决策引擎：滞回 + 价格推导。无内部状态，按槽位计算。
type Engine struct {
	band float64
}

// NewEngine 创建引擎；band <= 0 时用默认 0.0010。
func NewEngine(band float64) (*Engine, error) {
	if band < 0 {
		return nil, errors.New("quote: band must be >= 0")
	}
	if band == 0 {
		band = DefaultBand
	}
	return &Engine{band: band}, nil
}

// Band 返回滞回带宽度。
func (e *Engine) Band() float64 { return e.band }

// Decide 对一个槽位做一次决策。ref 是该方向的参考价，mult 为 spread 乘数。
//
// 重报价条件：从未挂单（LastPlaced == 0），或
// |1 − LastPlaced/target| ≥ band。滞回带围绕上次挂单价而非原始参考价，
// 小幅抖动不churn，漂移超过带宽必然跟上。
//
// 触发时乐观地先写 slot.LastPlaced = target，不等链上确认；
// 若提交失败，下个周期的盘口检查自然纠正（不会多发撤单）。
func (e *Engine) Decide(slot *Slot, ref, mult float64) Decision {
	target := ref * mult
	if slot.LastPlaced != 0 {
		change := math.Abs(1 - slot.LastPlaced/target)
		if change < e.band {
			return Decision{}
		}
	}
	slot.LastPlaced = target
	return Decision{Place: true, TargetPrice: target}
}

// DecideWithBook 同 Decide，并附带撤单判定。
func (e *Engine) DecideWithBook(slot *Slot, ref, mult float64, ownResting bool) Decision {
	d := e.Decide(slot, ref, mult)
	if d.Place {
		d.CancelExisting = ownResting
	}
	return d
}
