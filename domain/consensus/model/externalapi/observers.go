package externalapi

// BlockAppliedObserver is notified after a block was committed. broadcast
// is false when the block must not be relayed. Observers run after the
// ledger lock is released and may read the consensus, but must not submit
// ledger jobs since they still run inside the current one.
type BlockAppliedObserver interface {
	OnBlockApplied(block *DomainBlock, broadcast bool) error
}

// TransactionsSavedObserver is notified with the transactions of every
// committed block
type TransactionsSavedObserver interface {
	OnTransactionsSaved(transactions []*DomainTransaction) error
}

// TransactionPoolUpdater is the part of the transaction pool the ledger
// keeps in sync with committed and deleted blocks
type TransactionPoolUpdater interface {
	RemoveConfirmedTransactions(transactionIDs []*DomainHash)
	ReaddTransactions(transactions []*DomainTransaction)
}
