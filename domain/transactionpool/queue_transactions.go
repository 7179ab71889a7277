package transactionpool

import "github.com/dposnet/dposd/domain/consensus/model/externalapi"

// QueueTransactions stores transactions received in bulk for later
// processing with ProcessQueued. Only the stateless and duplicate checks
// are run here.
func (tp *transactionPool) QueueTransactions(transactions []*externalapi.DomainTransaction) []*RejectedTransaction {
	var rejected []*RejectedTransaction
	for _, transaction := range transactions {
		err := tp.queueTransaction(transaction)
		if err != nil {
			log.Debugf("Rejected queued transaction %s: %s", transaction.ID, err)
			observeRejected(err)
			rejected = append(rejected, &RejectedTransaction{Transaction: transaction, Err: err})
		}
	}
	return rejected
}

func (tp *transactionPool) queueTransaction(transaction *externalapi.DomainTransaction) error {
	err := tp.checkTransactionInIsolation(transaction)
	if err != nil {
		return err
	}

	tp.lock.Lock()
	defer tp.lock.Unlock()

	err = tp.checkNotKnown(transaction.ID)
	if err != nil {
		return err
	}
	err = tp.checkQueueCapacity(tp.queued, transaction)
	if err != nil {
		return err
	}
	tp.queued.push(&poolTransaction{
		transaction: transaction.Clone(),
		addedAt:     tp.clock.Now(),
	})
	tp.updateQueueMetrics()
	return nil
}

// ProcessQueued moves up to limit transactions, oldest first, from the
// queued queue through the full validation. Transactions failing it are
// dropped and reported in rejected.
func (tp *transactionPool) ProcessQueued(limit int) (
	accepted []*externalapi.DomainTransaction, rejected []*RejectedTransaction) {

	tp.lock.Lock()
	entries := tp.queued.popFront(limit)
	tp.updateQueueMetrics()
	tp.lock.Unlock()

	for _, entry := range entries {
		err := tp.processTransaction(entry.transaction, entry.addedAt)
		if err != nil {
			log.Debugf("Dropped queued transaction %s: %s", entry.transaction.ID, err)
			observeRejected(err)
			rejected = append(rejected, &RejectedTransaction{Transaction: entry.transaction, Err: err})
			continue
		}
		accepted = append(accepted, entry.transaction)
	}
	if len(entries) > 0 {
		log.Debugf("Processed %d queued transactions, %d were dropped", len(entries), len(rejected))
	}
	return accepted, rejected
}

// ReaddTransactions puts the transactions of a deleted block back into the
// queued queue
func (tp *transactionPool) ReaddTransactions(transactions []*externalapi.DomainTransaction) {
	tp.lock.Lock()
	defer tp.lock.Unlock()

	now := tp.clock.Now()
	for _, transaction := range transactions {
		tp.recentlyConfirmed.Remove(*transaction.ID)
		if _, ok := tp.queueOf(*transaction.ID); ok {
			continue
		}
		if tp.queued.len() >= tp.config.MaxTransactionsPerQueue {
			log.Warnf("The queued queue is full, dropping transaction %s of a deleted block", transaction.ID)
			continue
		}
		tp.queued.push(&poolTransaction{
			transaction: transaction.Clone(),
			addedAt:     now,
		})
	}
	tp.updateQueueMetrics()
}
