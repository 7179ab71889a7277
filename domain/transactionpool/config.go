package transactionpool

import (
	"time"

	"github.com/dposnet/dposd/domain/dposconfig"
)

const (
	defaultTransactionTimeout      = 3 * time.Hour
	defaultMaxTransactionsPerQueue = 10_000
)

// Config holds the limits of the transaction pool
type Config struct {
	// TransactionTimeout is how long an entry may wait in the queued, pending
	// or ready queue. Pending multisignature entries use their own lifetime.
	TransactionTimeout time.Duration

	// MaxTransactionsPerQueue bounds the size of every queue
	MaxTransactionsPerQueue int

	// MaxMultisignatureLifetime caps the lifetime, in hours, of a pending
	// multisignature entry
	MaxMultisignatureLifetime uint32
}

// DefaultConfig returns the default pool configuration for the given network
func DefaultConfig(params *dposconfig.Params) *Config {
	return &Config{
		TransactionTimeout:        defaultTransactionTimeout,
		MaxTransactionsPerQueue:   defaultMaxTransactionsPerQueue,
		MaxMultisignatureLifetime: params.MaxMultisignatureLifetime,
	}
}
