package transactionvalidator

import (
	"regexp"
	"strings"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
	"github.com/dposnet/dposd/domain/consensus/utils/signing"
	"github.com/pkg/errors"
)

var usernameRegexp = regexp.MustCompile(`^[a-z0-9!@$&_.]{1,20}$`)

// ValidateTransactionInIsolation validates the parts of the transaction that
// do not depend on the ledger
func (v *transactionValidator) ValidateTransactionInIsolation(tx *externalapi.DomainTransaction) error {
	if !tx.Type.IsKnown() {
		return errors.Wrapf(ruleerrors.ErrUnknownTransactionType, "transaction type %s", tx.Type)
	}

	err := v.checkSender(tx)
	if err != nil {
		return err
	}

	err = v.checkFee(tx)
	if err != nil {
		return err
	}

	err = v.checkAmountAndRecipient(tx)
	if err != nil {
		return err
	}

	err = v.checkAsset(tx)
	if err != nil {
		return err
	}

	err = v.checkSenderSignature(tx)
	if err != nil {
		return err
	}

	return v.checkTransactionID(tx)
}

func (v *transactionValidator) checkSender(tx *externalapi.DomainTransaction) error {
	if !signing.IsValidPublicKey(tx.SenderPublicKey) {
		return errors.Wrapf(ruleerrors.ErrInvalidPublicKey, "sender public key %s", tx.SenderPublicKey)
	}
	address, err := consensushashing.AddressFromPublicKey(tx.SenderPublicKey)
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrInvalidPublicKey, "sender public key %s: %s", tx.SenderPublicKey, err)
	}
	if address != tx.SenderID {
		return errors.Wrapf(ruleerrors.ErrSenderAddressMismatch, "sender %s does not belong to "+
			"public key %s, expected %s", tx.SenderID, tx.SenderPublicKey, address)
	}
	return nil
}

func (v *transactionValidator) checkFee(tx *externalapi.DomainTransaction) error {
	expectedFee := v.params.Fee(tx)
	if tx.Fee != expectedFee {
		return errors.Wrapf(ruleerrors.ErrBadFee, "%s transaction has fee %d, expected %d",
			tx.Type, tx.Fee, expectedFee)
	}
	return nil
}

func (v *transactionValidator) checkAmountAndRecipient(tx *externalapi.DomainTransaction) error {
	if tx.Type != externalapi.TransactionTypeSend {
		if tx.Amount != 0 || tx.RecipientID != "" {
			return errors.Wrapf(ruleerrors.ErrUnexpectedAmount, "%s transaction has amount %d "+
				"and recipient %q", tx.Type, tx.Amount, tx.RecipientID)
		}
		return nil
	}

	if tx.RecipientID == "" {
		return errors.WithStack(ruleerrors.ErrMissingRecipient)
	}
	if !consensushashing.IsValidAddress(tx.RecipientID) {
		return errors.Wrapf(ruleerrors.ErrInvalidRecipient, "recipient %s", tx.RecipientID)
	}
	if tx.Amount == 0 {
		return errors.WithStack(ruleerrors.ErrInvalidAmount)
	}
	if tx.Amount+tx.Fee < tx.Amount {
		return errors.Wrapf(ruleerrors.ErrInvalidAmount, "amount %d overflows with fee %d", tx.Amount, tx.Fee)
	}
	return nil
}

func (v *transactionValidator) checkAsset(tx *externalapi.DomainTransaction) error {
	asset := &tx.Asset
	setFields := 0
	for _, isSet := range []bool{asset.Signature != nil, asset.Delegate != nil, asset.Votes != nil,
		asset.Multisignature != nil} {
		if isSet {
			setFields++
		}
	}

	if tx.Type == externalapi.TransactionTypeSend {
		if setFields != 0 {
			return errors.Wrapf(ruleerrors.ErrInvalidAsset, "send transaction carries a %s asset", describeAsset(asset))
		}
		return nil
	}
	if len(asset.Data) != 0 || setFields != 1 {
		return errors.Wrapf(ruleerrors.ErrInvalidAsset, "%s transaction must carry exactly its own asset", tx.Type)
	}

	switch tx.Type {
	case externalapi.TransactionTypeSignature:
		if asset.Signature == nil {
			return errors.Wrapf(ruleerrors.ErrInvalidAsset, "signature transaction has no signature asset")
		}
		if !signing.IsValidPublicKey(asset.Signature.PublicKey) {
			return errors.Wrapf(ruleerrors.ErrInvalidPublicKey, "second public key %s", asset.Signature.PublicKey)
		}
	case externalapi.TransactionTypeDelegate:
		if asset.Delegate == nil {
			return errors.Wrapf(ruleerrors.ErrInvalidAsset, "delegate transaction has no delegate asset")
		}
		return checkUsername(asset.Delegate.Username)
	case externalapi.TransactionTypeVote:
		if asset.Votes == nil {
			return errors.Wrapf(ruleerrors.ErrInvalidAsset, "vote transaction has no vote asset")
		}
		return v.checkVotes(asset.Votes)
	case externalapi.TransactionTypeMultisignature:
		if asset.Multisignature == nil {
			return errors.Wrapf(ruleerrors.ErrInvalidAsset, "multisignature transaction has no multisignature asset")
		}
		return v.checkKeysgroup(tx.SenderPublicKey, asset.Multisignature)
	}
	return nil
}

func describeAsset(asset *externalapi.DomainTransactionAsset) string {
	switch {
	case asset.Signature != nil:
		return "signature"
	case asset.Delegate != nil:
		return "delegate"
	case asset.Votes != nil:
		return "vote"
	case asset.Multisignature != nil:
		return "multisignature"
	}
	return "no"
}

func checkUsername(username string) error {
	if !usernameRegexp.MatchString(username) {
		return errors.Wrapf(ruleerrors.ErrInvalidUsername, "username %q", username)
	}
	if consensushashing.IsValidAddress(strings.ToUpper(username)) {
		return errors.Wrapf(ruleerrors.ErrInvalidUsername, "username %q looks like an address", username)
	}
	return nil
}

func (v *transactionValidator) checkVotes(votes *externalapi.VoteAsset) error {
	voteCount := len(votes.Added) + len(votes.Removed)
	if voteCount == 0 {
		return errors.Wrapf(ruleerrors.ErrInvalidVotes, "vote transaction has no votes")
	}
	if voteCount > v.params.MaxVotesPerTransaction {
		return errors.Wrapf(ruleerrors.ErrInvalidVotes, "vote transaction has %d votes, at most %d "+
			"are allowed", voteCount, v.params.MaxVotesPerTransaction)
	}

	seen := make(map[string]struct{}, voteCount)
	for _, publicKeys := range [][]string{votes.Added, votes.Removed} {
		for _, publicKey := range publicKeys {
			if !signing.IsValidPublicKey(publicKey) {
				return errors.Wrapf(ruleerrors.ErrInvalidVotes, "invalid delegate public key %s", publicKey)
			}
			if _, ok := seen[publicKey]; ok {
				return errors.Wrapf(ruleerrors.ErrInvalidVotes, "delegate %s appears more than once", publicKey)
			}
			seen[publicKey] = struct{}{}
		}
	}
	return nil
}

func (v *transactionValidator) checkKeysgroup(senderPublicKey string,
	multisignature *externalapi.MultisignatureAsset) error {

	keysgroupSize := len(multisignature.Keysgroup)
	if keysgroupSize == 0 || keysgroupSize > v.params.MaxKeysgroupSize {
		return errors.Wrapf(ruleerrors.ErrInvalidKeysgroup, "keysgroup has %d keys, expected between 1 and %d",
			keysgroupSize, v.params.MaxKeysgroupSize)
	}
	if multisignature.Min < 1 || int(multisignature.Min) > keysgroupSize {
		return errors.Wrapf(ruleerrors.ErrInvalidKeysgroup, "min %d is out of [1, %d]",
			multisignature.Min, keysgroupSize)
	}
	if multisignature.Lifetime < 1 || multisignature.Lifetime > v.params.MaxMultisignatureLifetime {
		return errors.Wrapf(ruleerrors.ErrInvalidKeysgroup, "lifetime %d is out of [1, %d]",
			multisignature.Lifetime, v.params.MaxMultisignatureLifetime)
	}

	seen := make(map[string]struct{}, keysgroupSize)
	for _, publicKey := range multisignature.Keysgroup {
		if !signing.IsValidPublicKey(publicKey) {
			return errors.Wrapf(ruleerrors.ErrInvalidKeysgroup, "invalid keysgroup public key %s", publicKey)
		}
		if publicKey == senderPublicKey {
			return errors.Wrapf(ruleerrors.ErrInvalidKeysgroup, "the sender cannot be its own cosigner")
		}
		if _, ok := seen[publicKey]; ok {
			return errors.Wrapf(ruleerrors.ErrInvalidKeysgroup, "public key %s appears more than once", publicKey)
		}
		seen[publicKey] = struct{}{}
	}
	return nil
}

func (v *transactionValidator) checkSenderSignature(tx *externalapi.DomainTransaction) error {
	if len(tx.Signature) == 0 {
		return errors.Wrapf(ruleerrors.ErrBadTransactionSignature, "transaction is not signed")
	}
	isValid, err := v.crypto.Verify(consensushashing.TransactionSigningHash(tx), tx.Signature, tx.SenderPublicKey)
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrInvalidPublicKey, "sender public key %s: %s", tx.SenderPublicKey, err)
	}
	if !isValid {
		return errors.Wrapf(ruleerrors.ErrBadTransactionSignature, "signature does not verify "+
			"with sender public key %s", tx.SenderPublicKey)
	}
	return nil
}

func (v *transactionValidator) checkTransactionID(tx *externalapi.DomainTransaction) error {
	expectedID := consensushashing.TransactionID(tx)
	if !expectedID.Equal(tx.ID) {
		return errors.Wrapf(ruleerrors.ErrBadTransactionID, "transaction id %s, expected %s", tx.ID, expectedID)
	}
	return nil
}
