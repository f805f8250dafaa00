package adjudicator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the adjudicator's prometheus instrumentation. Counter
// and gauge names follow the teacher's lnrpc/rpcserver convention of
// a flat, underscore-separated name per operation rather than a
// single labeled catch-all.
type metrics struct {
	depositsTotal     prometheus.Counter
	disputesTotal     prometheus.Counter
	concludesTotal    prometheus.Counter
	withdrawalsTotal  prometheus.Counter
	receiverDupTotal  prometheus.Counter
	holdingsTotalGaug *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		depositsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "adjudicator_deposits_total",
			Help: "Number of successful deposit credits.",
		}),
		disputesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "adjudicator_disputes_total",
			Help: "Number of successful dispute registrations.",
		}),
		concludesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "adjudicator_concludes_total",
			Help: "Number of successful cooperative concludes.",
		}),
		withdrawalsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "adjudicator_withdrawals_total",
			Help: "Number of successful withdrawals (including zero-amount ones).",
		}),
		receiverDupTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "adjudicator_receiver_duplicate_total",
			Help: "Number of duplicate transaction_notification replays rejected.",
		}),
		holdingsTotalGaug: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "adjudicator_channel_holdings_total",
			Help: "Total holdings currently tracked for a channel.",
		}, []string{"channel"}),
	}
}
