// Package metrics provides Prometheus metrics for the quoting engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QuoteCycles 每个市场完成的报价周期数。
	QuoteCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quoter_cycles_total",
		Help: "Completed quoting cycles per market.",
	}, []string{"market"})

	// CyclesSkipped 因参考价不可用而整周期跳过的次数。
	CyclesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quoter_cycles_skipped_total",
		Help: "Cycles skipped because no reference price was available.",
	}, []string{"market"})

	// OrdersPlaced 已提交的挂单指令数。
	OrdersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quoter_orders_placed_total",
		Help: "Place instructions submitted, per market and side.",
	}, []string{"market", "side"})

	// OrdersCanceled 已提交的撤单指令数。
	OrdersCanceled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quoter_orders_canceled_total",
		Help: "Cancel instructions submitted, per market and side.",
	}, []string{"market", "side"})

	// SubmissionErrors 批次提交失败数。
	SubmissionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quoter_submission_errors_total",
		Help: "Failed batch submissions per market.",
	}, []string{"market"})

	// LeanFactor 各方向当前 lean 系数。
	LeanFactor = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "quoter_lean_factor",
		Help: "Current inventory lean factor per market and side.",
	}, []string{"market", "side"})

	// LastQuotePrice 最近一次挂单价格。
	LastQuotePrice = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "quoter_last_quote_price",
		Help: "Last placed quote price per market and side.",
	}, []string{"market", "side"})
)

// StartMetricsServer 启动 Prometheus 指标服务器。
func StartMetricsServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, nil)
	}()
}
