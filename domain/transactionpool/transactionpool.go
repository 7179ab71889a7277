package transactionpool

import (
	"fmt"
	"sync"
	"time"

	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/utils/signing"
	"github.com/dposnet/dposd/infrastructure/metrics"
	lru "github.com/hashicorp/golang-lru"
)

// recentlyConfirmedCapacity bounds the number of confirmed transaction ids
// the pool remembers
const recentlyConfirmedCapacity = 10000

// The names of the pool queues
const (
	QueueQueued      = "queued"
	QueuePending     = "pending"
	QueueReady       = "ready"
	QueueUnconfirmed = "unconfirmed"
)

// TransactionPool holds transactions that were received but not yet
// included in a committed block
type TransactionPool interface {
	externalapi.TransactionPoolUpdater

	ProcessNewTransaction(transaction *externalapi.DomainTransaction) error
	QueueTransactions(transactions []*externalapi.DomainTransaction) []*RejectedTransaction
	ProcessQueued(limit int) (accepted []*externalapi.DomainTransaction, rejected []*RejectedTransaction)
	AddSignature(transactionID *externalapi.DomainHash, publicKey string, signature []byte) error
	ExpireTransactions(now time.Time) []*externalapi.DomainHash

	GetMergedTransactionList(limit int) []*externalapi.DomainTransaction
	ReserveTransactions(limit int) []*externalapi.DomainTransaction
	ReleaseTransactions(transactionIDs []*externalapi.DomainHash)

	Transaction(transactionID *externalapi.DomainHash) (transaction *externalapi.DomainTransaction, queue string, ok bool)
	QueueSizes() QueueSizes
}

// RejectedTransaction is a transaction the pool refused together with the
// reason
type RejectedTransaction struct {
	Transaction *externalapi.DomainTransaction
	Err         error
}

// QueueSizes holds the number of entries in every queue
type QueueSizes struct {
	Queued      int
	Pending     int
	Ready       int
	Unconfirmed int
}

// transactionPool never calls the consensus while holding lock, since the
// consensus updates the pool from inside its own ledger jobs
type transactionPool struct {
	config    *Config
	consensus externalapi.Consensus
	crypto    model.CryptoProvider
	clock     model.Clock

	lock        sync.RWMutex
	queued      *transactionQueue
	pending     *transactionQueue
	ready       *transactionQueue
	unconfirmed *transactionQueue

	// recentlyConfirmed holds the ids passed to RemoveConfirmedTransactions,
	// so that a transaction validated before its block was committed is not
	// inserted after the removal
	recentlyConfirmed *lru.Cache
}

// New creates a new TransactionPool
func New(config *Config, consensus externalapi.Consensus, clock model.Clock) TransactionPool {
	recentlyConfirmed, err := lru.New(recentlyConfirmedCapacity)
	if err != nil {
		panic(err)
	}
	return &transactionPool{
		config:    config,
		consensus: consensus,
		crypto:    signing.New(),
		clock:     clock,

		queued:      newTransactionQueue(QueueQueued),
		pending:     newTransactionQueue(QueuePending),
		ready:       newTransactionQueue(QueueReady),
		unconfirmed: newTransactionQueue(QueueUnconfirmed),

		recentlyConfirmed: recentlyConfirmed,
	}
}

func (tp *transactionPool) queues() []*transactionQueue {
	return []*transactionQueue{tp.queued, tp.pending, tp.ready, tp.unconfirmed}
}

// this function MUST be called with the pool mutex locked for reads
func (tp *transactionPool) queueOf(id externalapi.DomainHash) (*transactionQueue, bool) {
	for _, queue := range tp.queues() {
		if queue.has(id) {
			return queue, true
		}
	}
	return nil, false
}

// this function MUST be called with the pool mutex locked for reads
func (tp *transactionPool) checkNotKnown(id *externalapi.DomainHash) error {
	if queue, ok := tp.queueOf(*id); ok {
		return txRuleError(RejectDuplicate, fmt.Sprintf("already have transaction %s in the %s queue",
			id, queue.name))
	}
	if tp.recentlyConfirmed.Contains(*id) {
		return txRuleError(RejectDuplicate, fmt.Sprintf("transaction %s is already confirmed", id))
	}
	return nil
}

func (tp *transactionPool) Transaction(transactionID *externalapi.DomainHash) (
	*externalapi.DomainTransaction, string, bool) {

	tp.lock.RLock()
	defer tp.lock.RUnlock()

	queue, ok := tp.queueOf(*transactionID)
	if !ok {
		return nil, "", false
	}
	entry, _ := queue.get(*transactionID)
	return entry.transaction.Clone(), queue.name, true
}

func (tp *transactionPool) QueueSizes() QueueSizes {
	tp.lock.RLock()
	defer tp.lock.RUnlock()

	return tp.queueSizes()
}

func (tp *transactionPool) queueSizes() QueueSizes {
	return QueueSizes{
		Queued:      tp.queued.len(),
		Pending:     tp.pending.len(),
		Ready:       tp.ready.len(),
		Unconfirmed: tp.unconfirmed.len(),
	}
}

// this function MUST be called with the pool mutex locked for writes
func (tp *transactionPool) updateQueueMetrics() {
	for _, queue := range tp.queues() {
		metrics.SetPoolQueueSize(queue.name, queue.len())
	}
}

func observeRejected(err error) {
	code, ok := ExtractRejectCode(err)
	if !ok {
		metrics.ObservePoolRejected("error")
		return
	}
	metrics.ObservePoolRejected(code.String())
}

func cloneTransactions(entries []*poolTransaction) []*externalapi.DomainTransaction {
	transactions := make([]*externalapi.DomainTransaction, len(entries))
	for i, entry := range entries {
		transactions[i] = entry.transaction.Clone()
	}
	return transactions
}
