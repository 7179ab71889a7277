package transactionpool

import (
	"bytes"
	"fmt"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
)

// AddSignature adds the signature of a cosigner to a transaction in the
// pending queue. Once enough cosigners signed the transaction it is checked
// again and moved to the ready queue.
func (tp *transactionPool) AddSignature(transactionID *externalapi.DomainHash, publicKey string,
	signature []byte) error {

	err := tp.addSignature(transactionID, publicKey, signature)
	if err != nil {
		observeRejected(err)
		return err
	}
	return nil
}

func (tp *transactionPool) addSignature(transactionID *externalapi.DomainHash, publicKey string,
	signature []byte) error {

	tp.lock.RLock()
	entry, ok := tp.pending.get(*transactionID)
	tp.lock.RUnlock()
	if !ok {
		return txRuleError(RejectInvalid, fmt.Sprintf("transaction %s is not waiting for signatures",
			transactionID))
	}
	transaction := entry.transaction

	isValid, err := tp.crypto.Verify(consensushashing.TransactionSigningHash(transaction), signature, publicKey)
	if err != nil {
		return txRuleError(RejectMalformed, fmt.Sprintf("cosigner %s: %s", publicKey, err))
	}
	if !isValid {
		return txRuleError(RejectInvalid, fmt.Sprintf("signature of %s does not sign transaction %s",
			publicKey, transactionID))
	}
	for _, existing := range transaction.Signatures {
		if bytes.Equal(existing, signature) {
			return txRuleError(RejectDuplicate, fmt.Sprintf("transaction %s already has the signature of %s",
				transactionID, publicKey))
		}
	}

	candidate := transaction.Clone()
	candidate.Signatures = append(candidate.Signatures, signature)
	isComplete, err := tp.checkTransactionInContext(candidate)
	if err != nil {
		return err
	}
	var sender *externalapi.Account
	if isComplete {
		sender, err = tp.sender(candidate)
		if err != nil {
			return err
		}
	}

	tp.lock.Lock()
	defer tp.lock.Unlock()

	current, ok := tp.pending.get(*transactionID)
	if !ok || current.transaction != transaction {
		return txRuleError(RejectInvalid, fmt.Sprintf("transaction %s changed while its signature "+
			"was checked", transactionID))
	}
	current.transaction = candidate
	if !isComplete {
		log.Debugf("Added the signature of %s to transaction %s", publicKey, transactionID)
		return nil
	}

	err = tp.checkSpendable(sender, candidate)
	if err != nil {
		return err
	}
	err = tp.checkQueueCapacity(tp.ready, candidate)
	if err != nil {
		return err
	}
	tp.pending.remove(*transactionID)
	tp.ready.push(&poolTransaction{
		transaction: candidate,
		addedAt:     current.addedAt,
	})
	tp.updateQueueMetrics()

	log.Debugf("Transaction %s has all its signatures and is ready", transactionID)
	return nil
}
