package order

import (
	"context"

	"go.uber.org/zap"

	"openbook-quoter-go/metrics"
	"openbook-quoter-go/quote"
)

// PriorityFee 批次前缀的计算预算参数。
type PriorityFee struct {
	MicroLamports uint64
	ComputeUnits  uint32
}

// Replacer 替换协议：一个槽位一个周期一次状态迁移。
// 批次固定顺序：优先费 → consume events → [cancel] → settle → place → memo。
// 不自带重试；提交失败记日志后状态保持乐观值，靠下周期盘口检查纠正。
type Replacer struct {
	Accounts  Accounts
	Submitter Submitter
	Memo      string
	Fee       PriorityFee
	Log       *zap.Logger
}

// Replace 为一个槽位构建并提交替换批次。cancel 来自盘口检查，
// 不由 slot.LastPlaced 推断。
func (r *Replacer) Replace(ctx context.Context, slot *quote.Slot, price, size float64, cancel bool) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	batch := r.buildBatch(slot, price, size, cancel)
	txID, err := r.Submitter.Submit(ctx, batch)
	if err != nil {
		metrics.SubmissionErrors.WithLabelValues(r.Accounts.MarketID).Inc()
		log.Error("order tx failed",
			zap.String("market", r.Accounts.MarketID),
			zap.String("side", string(slot.Side)),
			zap.Uint64("clientId", slot.ClientID),
			zap.Error(err))
		return
	}
	metrics.OrdersPlaced.WithLabelValues(r.Accounts.MarketID, string(slot.Side)).Inc()
	if cancel {
		metrics.OrdersCanceled.WithLabelValues(r.Accounts.MarketID, string(slot.Side)).Inc()
	}
	log.Info("quote placed",
		zap.String("market", r.Accounts.MarketID),
		zap.String("side", string(slot.Side)),
		zap.Int("level", int(slot.Level)),
		zap.Float64("price", price),
		zap.Float64("size", size),
		zap.Bool("cancel", cancel),
		zap.String("tx", txID))
}

func (r *Replacer) buildBatch(slot *quote.Slot, price, size float64, cancel bool) Batch {
	ins := make([]Instruction, 0, 6)
	ins = append(ins, Instruction{
		Kind:             KindPriorityFee,
		FeeMicroLamports: r.Fee.MicroLamports,
		ComputeUnits:     r.Fee.ComputeUnits,
	})
	ins = append(ins, Instruction{Kind: KindConsumeEvents})
	if cancel {
		ins = append(ins, Instruction{
			Kind:     KindCancelByClientID,
			Side:     slot.Side,
			ClientID: slot.ClientID,
		})
	}
	// 撤单后再结算一次，钱包先拿回释放的余额再挂新单。
	ins = append(ins, Instruction{Kind: KindSettleFunds})
	ins = append(ins, Instruction{
		Kind:     KindPlaceOrder,
		Side:     slot.Side,
		ClientID: slot.ClientID,
		Price:    price,
		Size:     size,
		PostOnly: true,
	})
	ins = append(ins, Instruction{Kind: KindMemo, Memo: r.Memo})
	return Batch{Accounts: r.Accounts, Instructions: ins}
}
