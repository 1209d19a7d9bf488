package quote

import "openbook-quoter-go/market"

// Level 报价档位：0 = top of book，1 = 深档。
type Level int

const (
	LevelTop  Level = 0
	LevelDeep Level = 1
)

// Slot 一个 (side, level) 的报价槽。client id 固定不变，
// LastPlaced 是跨周期唯一携带的状态（0 = 从未挂单）。
// 只由决策引擎和替换协议修改，全部发生在本策略自己的循环里。
type Slot struct {
	Side       market.Side
	Level      Level
	ClientID   uint64
	LastPlaced float64
	Size       float64
}

// ResetLastPlaced 清零 LastPlaced，下个周期无条件重新报价。
// lean factor 变化后按新数量重挂就靠这个。
func (s *Slot) ResetLastPlaced() {
	s.LastPlaced = 0
}

// DeepLevelMultiplier 深档在基础乘数上的再偏移：
// 深档 ask 更高（×1.1），深档 bid 更低（×0.9）。
func DeepLevelMultiplier(side market.Side, mult float64) float64 {
	if side == market.SideAsk {
		return mult * 1.1
	}
	return mult * 0.9
}
