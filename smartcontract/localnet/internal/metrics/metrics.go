package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Metrics names.
	MetricNameTransactions = "pricefeed_localnet_transactions_total"
	MetricNameInstructions = "pricefeed_localnet_instructions_total"
	MetricNameSlot         = "pricefeed_localnet_slot"

	// Labels.
	LabelProgram = "program"
	LabelResult  = "result"

	// Results.
	ResultSuccess  = "success"
	ResultFailed   = "failed"
	ResultRejected = "rejected"
	ResultDropped  = "dropped"
)

var (
	Transactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTransactions,
			Help: "Number of transactions submitted to the local ledger by result",
		},
		[]string{LabelResult},
	)

	Instructions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameInstructions,
			Help: "Number of instructions executed by the local ledger by program and result",
		},
		[]string{LabelProgram, LabelResult},
	)

	Slot = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameSlot,
			Help: "Current slot of the local ledger",
		},
	)
)
