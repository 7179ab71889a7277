package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dposd"

var (
	blocksAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "blocks_applied_total",
		Help:      "Count of blocks committed to the ledger.",
	})

	blockApplyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "block_apply_duration_seconds",
		Help:      "Duration of verifying, applying and committing a block.",
		Buckets:   prometheus.DefBuckets,
	})

	blocksRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "blocks_rejected_total",
		Help:      "Count of rejected blocks by error kind.",
	}, []string{"kind"})

	forksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "forks_total",
		Help:      "Count of blocks that conflicted with the local chain by fork type.",
	}, []string{"type"})

	blocksDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "blocks_deleted_total",
		Help:      "Count of blocks deleted from the chain tip.",
	})

	chainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "chain_height",
		Help:      "Height of the current chain tip.",
	})

	poolQueueSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "txpool",
		Name:      "queue_size",
		Help:      "Number of transactions per pool queue.",
	}, []string{"queue"})

	poolRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "txpool",
		Name:      "rejected_total",
		Help:      "Count of transactions rejected by the pool by reject code.",
	}, []string{"code"})

	poolExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "txpool",
		Name:      "expired_total",
		Help:      "Count of transactions evicted from the pool after their timeout.",
	})
)

// ObserveBlockApplied records a committed block and the time it took since
// started
func ObserveBlockApplied(block *externalapi.DomainBlock, started time.Time) {
	blocksAppliedTotal.Inc()
	blockApplyDuration.Observe(time.Since(started).Seconds())
	chainHeight.Set(float64(block.Height))
}

// ObserveBlockRejected records a block rejected with err. Forks are
// additionally counted per fork type.
func ObserveBlockRejected(err error) {
	kind, ok := ruleerrors.KindOf(err)
	if !ok {
		blocksRejectedTotal.WithLabelValues("error").Inc()
		return
	}
	blocksRejectedTotal.WithLabelValues(kind.String()).Inc()
	if forkType, ok := ruleerrors.ForkTypeOf(err); ok {
		forksTotal.WithLabelValues(strconv.Itoa(int(forkType))).Inc()
	}
}

// ObserveBlockDeleted records the deletion of the chain tip. newTipHeight is
// the height of the tip after the deletion.
func ObserveBlockDeleted(newTipHeight uint64) {
	blocksDeletedTotal.Inc()
	chainHeight.Set(float64(newTipHeight))
}

// SetChainHeight sets the chain height gauge, used when the chain is loaded
func SetChainHeight(height uint64) {
	chainHeight.Set(float64(height))
}

// SetPoolQueueSize sets the size of the named pool queue
func SetPoolQueueSize(queue string, size int) {
	poolQueueSize.WithLabelValues(queue).Set(float64(size))
}

// ObservePoolRejected records a transaction rejected by the pool
func ObservePoolRejected(code string) {
	poolRejectedTotal.WithLabelValues(code).Inc()
}

// ObservePoolExpired records count transactions evicted by expiry
func ObservePoolExpired(count int) {
	poolExpiredTotal.Add(float64(count))
}

// Handler returns the http handler serving the registered metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
