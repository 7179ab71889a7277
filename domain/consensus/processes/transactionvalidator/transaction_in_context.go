package transactionvalidator

import (
	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
	"github.com/pkg/errors"
)

// ValidateTransactionInContext validates the transaction against the staged
// state of its sender and of the accounts it refers to. It expects the
// transaction to be valid in isolation.
func (v *transactionValidator) ValidateTransactionInContext(stagingArea *model.StagingArea,
	tx *externalapi.DomainTransaction) error {

	sender, err := v.accountStore.Account(v.databaseContext, stagingArea, tx.SenderID)
	if err != nil {
		if database.IsNotFoundError(err) {
			return errors.Wrapf(ruleerrors.ErrMissingAccount, "sender %s of transaction %s", tx.SenderID, tx.ID)
		}
		return err
	}

	if sender.PublicKey != "" && sender.PublicKey != tx.SenderPublicKey {
		return errors.Wrapf(ruleerrors.ErrSenderPublicKeyMismatch, "account %s is bound to public key %s",
			sender.Address, sender.PublicKey)
	}

	if sender.Balance < tx.Amount+tx.Fee {
		return errors.Wrapf(ruleerrors.ErrInsufficientBalance, "account %s has balance %d, transaction %s "+
			"spends %d", sender.Address, sender.Balance, tx.ID, tx.Amount+tx.Fee)
	}

	err = v.checkSecondSignature(sender, tx)
	if err != nil {
		return err
	}

	switch tx.Type {
	case externalapi.TransactionTypeSignature:
		if sender.SecondPublicKey != "" {
			return errors.Wrapf(ruleerrors.ErrSecondSignatureAlreadyRegistered, "account %s", sender.Address)
		}
	case externalapi.TransactionTypeDelegate:
		err = v.checkDelegateRegistration(stagingArea, sender, tx.Asset.Delegate)
	case externalapi.TransactionTypeVote:
		err = v.checkVoteTargets(stagingArea, sender, tx.Asset.Votes)
	case externalapi.TransactionTypeMultisignature:
		err = v.checkMultisignatureRegistration(sender, tx)
	}
	if err != nil {
		return err
	}

	if sender.IsMultisignature() {
		return v.checkCosigners(tx, sender.Multisignatures, int(sender.MultiMin))
	}
	return nil
}

func (v *transactionValidator) checkSecondSignature(sender *externalapi.Account,
	tx *externalapi.DomainTransaction) error {

	if sender.SecondPublicKey == "" {
		if len(tx.SignSignature) != 0 {
			return errors.Wrapf(ruleerrors.ErrUnexpectedSecondSignature, "account %s has no second public key",
				sender.Address)
		}
		return nil
	}

	if len(tx.SignSignature) == 0 {
		return errors.Wrapf(ruleerrors.ErrMissingSecondSignature, "account %s requires a second signature",
			sender.Address)
	}
	isValid, err := v.crypto.Verify(consensushashing.TransactionSecondSigningHash(tx), tx.SignSignature,
		sender.SecondPublicKey)
	if err != nil {
		return err
	}
	if !isValid {
		return errors.Wrapf(ruleerrors.ErrBadSecondSignature, "second signature of transaction %s", tx.ID)
	}
	return nil
}

func (v *transactionValidator) checkDelegateRegistration(stagingArea *model.StagingArea,
	sender *externalapi.Account, asset *externalapi.DelegateAsset) error {

	if sender.IsDelegate {
		return errors.Wrapf(ruleerrors.ErrAlreadyDelegate, "account %s is registered as %s",
			sender.Address, sender.Username)
	}

	delegates, err := v.accountStore.Delegates(v.databaseContext, stagingArea)
	if err != nil {
		return err
	}
	for _, delegate := range delegates {
		if delegate.Username == asset.Username {
			return errors.Wrapf(ruleerrors.ErrUsernameTaken, "username %s is used by %s",
				asset.Username, delegate.Address)
		}
	}
	return nil
}

func (v *transactionValidator) checkVoteTargets(stagingArea *model.StagingArea,
	sender *externalapi.Account, votes *externalapi.VoteAsset) error {

	for _, delegatePublicKey := range votes.Added {
		if sender.HasVoteFor(delegatePublicKey) {
			return errors.Wrapf(ruleerrors.ErrAlreadyVoted, "account %s already votes for %s",
				sender.Address, delegatePublicKey)
		}
		isDelegate, err := v.isDelegate(stagingArea, delegatePublicKey)
		if err != nil {
			return err
		}
		if !isDelegate {
			return errors.Wrapf(ruleerrors.ErrVoteTargetNotDelegate, "%s is not a delegate", delegatePublicKey)
		}
	}
	for _, delegatePublicKey := range votes.Removed {
		if !sender.HasVoteFor(delegatePublicKey) {
			return errors.Wrapf(ruleerrors.ErrNotVoted, "account %s does not vote for %s",
				sender.Address, delegatePublicKey)
		}
	}

	resultingVotes := len(sender.Votes) + len(votes.Added) - len(votes.Removed)
	if resultingVotes > v.params.MaxVotesPerAccount {
		return errors.Wrapf(ruleerrors.ErrTooManyVotes, "account %s would have %d votes, at most %d "+
			"are allowed", sender.Address, resultingVotes, v.params.MaxVotesPerAccount)
	}
	return nil
}

func (v *transactionValidator) isDelegate(stagingArea *model.StagingArea, publicKey string) (bool, error) {
	address, err := consensushashing.AddressFromPublicKey(publicKey)
	if err != nil {
		return false, err
	}
	account, err := v.accountStore.Account(v.databaseContext, stagingArea, address)
	if err != nil {
		if database.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return account.IsDelegate && account.PublicKey == publicKey, nil
}

func (v *transactionValidator) checkMultisignatureRegistration(sender *externalapi.Account,
	tx *externalapi.DomainTransaction) error {

	if sender.IsMultisignature() {
		return errors.Wrapf(ruleerrors.ErrMultisignatureAlreadyRegistered, "account %s", sender.Address)
	}
	keysgroup := tx.Asset.Multisignature.Keysgroup
	return v.checkCosigners(tx, keysgroup, len(keysgroup))
}

// checkCosigners checks that every cosigner signature of tx belongs to a
// distinct member of keysgroup, and that at least min members signed
func (v *transactionValidator) checkCosigners(tx *externalapi.DomainTransaction, keysgroup []string, min int) error {
	signingHash := consensushashing.TransactionSigningHash(tx)
	signed := make(map[string]struct{}, len(tx.Signatures))
	for _, signature := range tx.Signatures {
		matched := false
		for _, publicKey := range keysgroup {
			if _, ok := signed[publicKey]; ok {
				continue
			}
			isValid, err := v.crypto.Verify(signingHash, signature, publicKey)
			if err != nil {
				return err
			}
			if isValid {
				signed[publicKey] = struct{}{}
				matched = true
				break
			}
		}
		if !matched {
			return errors.Wrapf(ruleerrors.ErrInvalidCosignerSignature, "transaction %s has a signature "+
				"of no expected cosigner", tx.ID)
		}
	}

	if len(signed) < min {
		return errors.Wrapf(ruleerrors.ErrMissingCosignerSignatures, "transaction %s has %d of the %d "+
			"required cosigner signatures", tx.ID, len(signed), min)
	}
	return nil
}
