package transactionpool

import (
	"time"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/infrastructure/metrics"
)

// ExpireTransactions evicts the entries that waited longer than their
// timeout and returns their ids. Unconfirmed entries never expire.
func (tp *transactionPool) ExpireTransactions(now time.Time) []*externalapi.DomainHash {
	tp.lock.Lock()
	defer tp.lock.Unlock()

	var expired []*externalapi.DomainHash
	for _, queue := range []*transactionQueue{tp.queued, tp.pending, tp.ready} {
		for _, entry := range queue.entries(0) {
			timeout := entry.timeout
			if timeout == 0 {
				timeout = tp.config.TransactionTimeout
			}
			if now.Sub(entry.addedAt) <= timeout {
				continue
			}
			queue.remove(entry.id())
			expired = append(expired, entry.transaction.ID)
			log.Debugf("Transaction %s expired in the %s queue", entry.transaction.ID, queue.name)
		}
	}

	if len(expired) > 0 {
		log.Infof("Expired %d transactions", len(expired))
		metrics.ObservePoolExpired(len(expired))
		tp.updateQueueMetrics()
	}
	return expired
}
