package transactionpool

import (
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

// GetMergedTransactionList returns up to limit ready transactions in the
// order they became ready
func (tp *transactionPool) GetMergedTransactionList(limit int) []*externalapi.DomainTransaction {
	tp.lock.RLock()
	defer tp.lock.RUnlock()

	return cloneTransactions(tp.ready.entries(limit))
}

// ReserveTransactions moves up to limit ready transactions to the
// unconfirmed queue and returns them
func (tp *transactionPool) ReserveTransactions(limit int) []*externalapi.DomainTransaction {
	tp.lock.Lock()
	defer tp.lock.Unlock()

	available := tp.config.MaxTransactionsPerQueue - tp.unconfirmed.len()
	if available <= 0 {
		return nil
	}
	if limit <= 0 || limit > available {
		limit = available
	}

	entries := tp.ready.popFront(limit)
	for _, entry := range entries {
		tp.unconfirmed.push(entry)
	}
	tp.updateQueueMetrics()
	return cloneTransactions(entries)
}

// ReleaseTransactions moves reserved transactions that did not make it into
// a block back to the ready queue
func (tp *transactionPool) ReleaseTransactions(transactionIDs []*externalapi.DomainHash) {
	tp.lock.Lock()
	defer tp.lock.Unlock()

	for _, transactionID := range transactionIDs {
		entry, ok := tp.unconfirmed.remove(*transactionID)
		if !ok {
			continue
		}
		tp.ready.push(entry)
	}
	tp.updateQueueMetrics()
}

// RemoveConfirmedTransactions drops the transactions of a committed block
// from every queue
func (tp *transactionPool) RemoveConfirmedTransactions(transactionIDs []*externalapi.DomainHash) {
	tp.lock.Lock()
	defer tp.lock.Unlock()

	removed := 0
	for _, transactionID := range transactionIDs {
		tp.recentlyConfirmed.Add(*transactionID, struct{}{})
		if queue, ok := tp.queueOf(*transactionID); ok {
			queue.remove(*transactionID)
			removed++
		}
	}
	if removed > 0 {
		log.Debugf("Removed %d confirmed transactions", removed)
	}
	tp.updateQueueMetrics()
}
