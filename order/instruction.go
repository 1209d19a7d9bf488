package order

import (
	"context"

	"openbook-quoter-go/market"
)

// Kind 指令类型，顺序即批次内的固定排列。
type Kind string

const (
	// KindPriorityFee 计算预算/优先费，批次前缀。
	KindPriorityFee Kind = "PRIORITY_FEE"
	// KindConsumeEvents 清理撮合事件队列里的本账户 credit（幂等）。
	KindConsumeEvents Kind = "CONSUME_EVENTS"
	// KindCancelByClientID 按 client id 撤单。
	KindCancelByClientID Kind = "CANCEL_BY_CLIENT_ID"
	// KindSettleFunds 结算资金，让钱包反映已释放的余额。
	KindSettleFunds Kind = "SETTLE_FUNDS"
	// KindPlaceOrder 挂新单，post-only。
	KindPlaceOrder Kind = "PLACE_ORDER"
	// KindMemo 静态应用标识，审计用，无功能语义。
	KindMemo Kind = "MEMO"
)

// Instruction 单条指令。编码成链上格式是提交层的事，这里只描述语义。
type Instruction struct {
	Kind     Kind
	Side     market.Side
	ClientID uint64
	Price    float64
	Size     float64
	PostOnly bool
	Memo     string

	// 优先费参数，仅 KindPriorityFee 使用。
	FeeMicroLamports uint64
	ComputeUnits     uint32
}

// Accounts 一个市场实例涉及的固定账户集合。
type Accounts struct {
	MarketID    string
	OpenOrders  string
	Owner       string
	BaseWallet  string
	QuoteWallet string
}

// Batch 一个替换周期提交的原子指令批次。
type Batch struct {
	Accounts     Accounts
	Instructions []Instruction
}

// Submitter 外部提交接口：签名、编码、网络重试都在它后面。
type Submitter interface {
	Submit(ctx context.Context, b Batch) (txID string, err error)
}
