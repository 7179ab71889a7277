package transactionapplier

import (
	"math"

	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

type transactionApplier struct {
	databaseContext model.DBReader
	accountStore    model.AccountStore
}

// New instantiates a new TransactionApplier
func New(databaseContext model.DBReader, accountStore model.AccountStore) model.TransactionApplier {
	return &transactionApplier{
		databaseContext: databaseContext,
		accountStore:    accountStore,
	}
}

// ApplyTransaction debits the sender by amount+fee and stages the effect of
// the transaction. The transaction is expected to be valid in context.
func (ta *transactionApplier) ApplyTransaction(stagingArea *model.StagingArea,
	tx *externalapi.DomainTransaction) ([]*externalapi.LedgerOp, error) {

	sender, err := ta.accountStore.Account(ta.databaseContext, stagingArea, tx.SenderID)
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, errors.Wrapf(ruleerrors.ErrMissingAccount, "sender %s of transaction %s", tx.SenderID, tx.ID)
		}
		return nil, err
	}

	spent := tx.Amount + tx.Fee
	if spent < tx.Amount || spent > math.MaxInt64 {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidAmount, "transaction %s spends %d with fee %d",
			tx.ID, tx.Amount, tx.Fee)
	}

	senderDiff := senderEffects(tx)
	senderDiff.Balance = -int64(spent)
	if sender.PublicKey == "" {
		senderDiff.PublicKey = tx.SenderPublicKey
	}
	return ta.apply(stagingArea, tx, senderDiff)
}

// ApplyGenesisTransaction stages the effect of a genesis transaction. The
// sender is not debited and no fee is paid.
func (ta *transactionApplier) ApplyGenesisTransaction(stagingArea *model.StagingArea,
	tx *externalapi.DomainTransaction) ([]*externalapi.LedgerOp, error) {

	senderDiff := senderEffects(tx)
	sender, err := ta.accountStore.Account(ta.databaseContext, stagingArea, tx.SenderID)
	if err != nil && !database.IsNotFoundError(err) {
		return nil, err
	}
	if sender == nil || sender.PublicKey == "" {
		senderDiff.PublicKey = tx.SenderPublicKey
	}
	return ta.apply(stagingArea, tx, senderDiff)
}

func (ta *transactionApplier) apply(stagingArea *model.StagingArea, tx *externalapi.DomainTransaction,
	senderDiff *externalapi.AccountDiff) ([]*externalapi.LedgerOp, error) {

	var ops []*externalapi.LedgerOp
	// A genesis send from an already known sender leaves it untouched
	if senderDiff.Balance != 0 || !senderDiff.IsNumericOnly() {
		senderOps, err := ta.accountStore.Merge(ta.databaseContext, stagingArea, tx.SenderID, senderDiff)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to apply transaction %s to sender %s", tx.ID, tx.SenderID)
		}
		ops = append(ops, senderOps...)
	}

	if tx.Type == externalapi.TransactionTypeSend {
		recipientOps, err := ta.accountStore.Merge(ta.databaseContext, stagingArea, tx.RecipientID,
			&externalapi.AccountDiff{Balance: int64(tx.Amount)})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to credit transaction %s to %s", tx.ID, tx.RecipientID)
		}
		ops = append(ops, recipientOps...)
	}
	return ops, nil
}

// senderEffects returns the diff a transaction applies to its sender on top
// of the debit
func senderEffects(tx *externalapi.DomainTransaction) *externalapi.AccountDiff {
	diff := &externalapi.AccountDiff{}
	switch tx.Type {
	case externalapi.TransactionTypeSignature:
		diff.SecondPublicKey = tx.Asset.Signature.PublicKey
	case externalapi.TransactionTypeDelegate:
		diff.Username = tx.Asset.Delegate.Username
	case externalapi.TransactionTypeVote:
		diff.VotesAdded = tx.Asset.Votes.Added
		diff.VotesRemoved = tx.Asset.Votes.Removed
	case externalapi.TransactionTypeMultisignature:
		diff.MultisignaturesAdded = tx.Asset.Multisignature.Keysgroup
		diff.MultiMin = tx.Asset.Multisignature.Min
		diff.MultiLifetime = tx.Asset.Multisignature.Lifetime
	}
	return diff
}
