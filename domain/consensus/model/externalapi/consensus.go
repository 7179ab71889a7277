package externalapi

import "context"

// Consensus maintains the current state of the ledger
type Consensus interface {
	// Init applies the genesis block to an empty database, or loads the
	// chain tip of an existing one
	Init(ctx context.Context) error

	// Stop waits for the running ledger job and rejects any further ones
	Stop()

	ApplyBlock(ctx context.Context, block *DomainBlock, options ApplyOptions) error
	DeleteLastBlock(ctx context.Context) (*DomainBlock, error)
	DeleteAfterBlock(ctx context.Context, height uint64) error
	SetSyncing(ctx context.Context, isSyncing bool) error

	VerifyReceipt(block *DomainBlock) *VerificationResult
	VerifyBlock(block *DomainBlock) (*VerificationResult, error)
	BuildBlock(keyPair *KeyPair, timestamp int64, transactions []*DomainTransaction) (*DomainBlock, error)

	ValidateTransactionInIsolation(transaction *DomainTransaction) error
	ValidateTransactionInContext(transaction *DomainTransaction) error

	GenerateDelegateList(height uint64) ([]string, error)
	GetRound(height uint64) (*Round, error)
	GetRoundSnapshot(round uint64) (*RoundSnapshot, error)
	GetAccount(address string) (*Account, error)
	GetAccounts() ([]*Account, error)
	GetBlock(blockID *DomainHash) (*DomainBlock, error)
	GetBlockByHeight(height uint64) (*DomainBlock, error)
	LastBlock() (*DomainBlock, error)
	TransactionExists(transactionID *DomainHash) (bool, error)
	LedgerCommitment() (*DomainHash, error)

	RegisterBlockAppliedObserver(observer BlockAppliedObserver)
	RegisterTransactionsSavedObserver(observer TransactionsSavedObserver)
	SetTransactionPoolUpdater(updater TransactionPoolUpdater)
}
