package transactionpool

import (
	"fmt"
	"time"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/infrastructure/logger"
	"github.com/pkg/errors"
)

func (tp *transactionPool) ProcessNewTransaction(transaction *externalapi.DomainTransaction) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ProcessNewTransaction")
	defer onEnd()

	err := tp.processTransaction(transaction, tp.clock.Now())
	if err != nil {
		observeRejected(err)
		return err
	}
	return nil
}

// processTransaction validates transaction and inserts it into the ready
// queue, or into the pending queue while cosigner signatures are missing
func (tp *transactionPool) processTransaction(transaction *externalapi.DomainTransaction, receivedAt time.Time) error {
	err := tp.checkTransactionInIsolation(transaction)
	if err != nil {
		return err
	}

	isComplete, err := tp.checkTransactionInContext(transaction)
	if err != nil {
		return err
	}

	var sender *externalapi.Account
	timeout := time.Duration(0)
	if isComplete {
		sender, err = tp.sender(transaction)
		if err != nil {
			return err
		}
	} else {
		timeout, err = tp.pendingTimeout(transaction)
		if err != nil {
			return err
		}
	}

	tp.lock.Lock()
	defer tp.lock.Unlock()

	err = tp.checkNotKnown(transaction.ID)
	if err != nil {
		return err
	}

	target := tp.pending
	if isComplete {
		err = tp.checkSpendable(sender, transaction)
		if err != nil {
			return err
		}
		target = tp.ready
	}

	err = tp.checkQueueCapacity(target, transaction)
	if err != nil {
		return err
	}
	target.push(&poolTransaction{
		transaction: transaction.Clone(),
		addedAt:     receivedAt,
		timeout:     timeout,
	})
	tp.updateQueueMetrics()

	log.Debugf("Accepted transaction %s into the %s queue", transaction.ID, target.name)
	return nil
}

// checkTransactionInIsolation runs the stateless checks and makes sure the
// transaction was not committed yet
func (tp *transactionPool) checkTransactionInIsolation(transaction *externalapi.DomainTransaction) error {
	err := tp.consensus.ValidateTransactionInIsolation(transaction)
	if err != nil {
		if ruleerrors.IsRuleError(err) {
			return ledgerRuleError(RejectMalformed, err)
		}
		return err
	}

	isCommitted, err := tp.consensus.TransactionExists(transaction.ID)
	if err != nil {
		return err
	}
	if isCommitted {
		return txRuleError(RejectDuplicate, fmt.Sprintf("transaction %s is already confirmed",
			transaction.ID))
	}
	return nil
}

// checkTransactionInContext runs the stateful checks of the ledger. It
// returns isComplete false for a transaction that is only missing cosigner
// signatures.
func (tp *transactionPool) checkTransactionInContext(transaction *externalapi.DomainTransaction) (
	isComplete bool, err error) {

	err = tp.consensus.ValidateTransactionInContext(transaction)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ruleerrors.ErrMissingCosignerSignatures) {
		return false, nil
	}
	if code, ok := ExtractRejectCode(err); ok {
		return false, ledgerRuleError(code, err)
	}
	return false, err
}

func (tp *transactionPool) sender(transaction *externalapi.DomainTransaction) (*externalapi.Account, error) {
	sender, err := tp.consensus.GetAccount(transaction.SenderID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, txRuleError(RejectInvalid, fmt.Sprintf("sender %s of transaction %s does not exist",
			transaction.SenderID, transaction.ID))
	}
	return sender, nil
}

// pendingTimeout returns how long transaction may wait for its cosigners
func (tp *transactionPool) pendingTimeout(transaction *externalapi.DomainTransaction) (time.Duration, error) {
	var lifetime uint32
	if transaction.Type == externalapi.TransactionTypeMultisignature && transaction.Asset.Multisignature != nil {
		lifetime = transaction.Asset.Multisignature.Lifetime
	} else {
		sender, err := tp.sender(transaction)
		if err != nil {
			return 0, err
		}
		lifetime = sender.MultiLifetime
	}

	if lifetime == 0 {
		return tp.config.TransactionTimeout, nil
	}
	if lifetime > tp.config.MaxMultisignatureLifetime {
		lifetime = tp.config.MaxMultisignatureLifetime
	}
	return time.Duration(lifetime) * time.Hour, nil
}

// checkSpendable makes sure the sender can pay for transaction on top of
// everything it already has in the ready and unconfirmed queues.
// this function MUST be called with the pool mutex locked for reads
func (tp *transactionPool) checkSpendable(sender *externalapi.Account, transaction *externalapi.DomainTransaction) error {
	spent := transaction.Amount + transaction.Fee +
		tp.ready.spentBy(transaction.SenderID) + tp.unconfirmed.spentBy(transaction.SenderID)
	if sender.Balance < spent {
		return txRuleError(RejectInsufficientBalance, fmt.Sprintf("account %s has balance %d, its pool "+
			"transactions including %s spend %d", sender.Address, sender.Balance, transaction.ID, spent))
	}
	return nil
}

// this function MUST be called with the pool mutex locked for reads
func (tp *transactionPool) checkQueueCapacity(queue *transactionQueue, transaction *externalapi.DomainTransaction) error {
	if queue.len() >= tp.config.MaxTransactionsPerQueue {
		return txRuleError(RejectPoolFull, fmt.Sprintf("the %s queue is full, dropping transaction %s",
			queue.name, transaction.ID))
	}
	return nil
}
