package externalapi

import "fmt"

// TransactionType identifies the effect a transaction has on the ledger
type TransactionType uint8

// The supported transaction types
const (
	TransactionTypeSend TransactionType = iota
	TransactionTypeSignature
	TransactionTypeDelegate
	TransactionTypeVote
	TransactionTypeMultisignature
)

var transactionTypeStrings = map[TransactionType]string{
	TransactionTypeSend:           "send",
	TransactionTypeSignature:      "signature",
	TransactionTypeDelegate:       "delegate",
	TransactionTypeVote:           "vote",
	TransactionTypeMultisignature: "multisignature",
}

func (t TransactionType) String() string {
	if s, ok := transactionTypeStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// IsKnown returns whether t is one of the supported transaction types
func (t TransactionType) IsKnown() bool {
	_, ok := transactionTypeStrings[t]
	return ok
}

// DomainTransaction represents a DPoS transaction
type DomainTransaction struct {
	ID              *DomainHash
	Type            TransactionType
	Timestamp       int64
	SenderPublicKey string
	SenderID        string
	RecipientID     string
	Amount          uint64
	Fee             uint64
	Asset           DomainTransactionAsset
	Signature       []byte
	SignSignature   []byte
	Signatures      [][]byte
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainTransaction{&DomainHash{}, 0, 0, "", "", "", 0, 0, DomainTransactionAsset{}, []byte{}, []byte{},
	[][]byte{}}

// DomainTransactionAsset holds the type-specific payload of a transaction.
// Exactly the field matching the transaction type is set.
type DomainTransactionAsset struct {
	Data           []byte
	Signature      *SignatureAsset
	Delegate       *DelegateAsset
	Votes          *VoteAsset
	Multisignature *MultisignatureAsset
}

// SignatureAsset registers a second public key
type SignatureAsset struct {
	PublicKey string
}

// DelegateAsset registers the sender as a delegate
type DelegateAsset struct {
	Username string
}

// VoteAsset adds and removes votes for delegate public keys
type VoteAsset struct {
	Added   []string
	Removed []string
}

// MultisignatureAsset registers a keysgroup on the sender account
type MultisignatureAsset struct {
	Min       uint32
	Lifetime  uint32
	Keysgroup []string
}

// Clone returns a clone of DomainTransaction
func (tx *DomainTransaction) Clone() *DomainTransaction {
	if tx == nil {
		return nil
	}
	var signaturesClone [][]byte
	if tx.Signatures != nil {
		signaturesClone = make([][]byte, len(tx.Signatures))
		for i, signature := range tx.Signatures {
			signaturesClone[i] = cloneBytes(signature)
		}
	}

	return &DomainTransaction{
		ID:              tx.ID.Clone(),
		Type:            tx.Type,
		Timestamp:       tx.Timestamp,
		SenderPublicKey: tx.SenderPublicKey,
		SenderID:        tx.SenderID,
		RecipientID:     tx.RecipientID,
		Amount:          tx.Amount,
		Fee:             tx.Fee,
		Asset:           tx.Asset.Clone(),
		Signature:       cloneBytes(tx.Signature),
		SignSignature:   cloneBytes(tx.SignSignature),
		Signatures:      signaturesClone,
	}
}

// Equal returns whether tx equals to other
func (tx *DomainTransaction) Equal(other *DomainTransaction) bool {
	if tx == nil || other == nil {
		return tx == other
	}

	if !tx.ID.Equal(other.ID) ||
		tx.Type != other.Type ||
		tx.Timestamp != other.Timestamp ||
		tx.SenderPublicKey != other.SenderPublicKey ||
		tx.SenderID != other.SenderID ||
		tx.RecipientID != other.RecipientID ||
		tx.Amount != other.Amount ||
		tx.Fee != other.Fee ||
		!tx.Asset.Equal(&other.Asset) ||
		!bytesEqual(tx.Signature, other.Signature) ||
		!bytesEqual(tx.SignSignature, other.SignSignature) {
		return false
	}

	if len(tx.Signatures) != len(other.Signatures) {
		return false
	}
	for i, signature := range tx.Signatures {
		if !bytesEqual(signature, other.Signatures[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the asset
func (asset DomainTransactionAsset) Clone() DomainTransactionAsset {
	clone := DomainTransactionAsset{Data: cloneBytes(asset.Data)}
	if asset.Signature != nil {
		signature := *asset.Signature
		clone.Signature = &signature
	}
	if asset.Delegate != nil {
		delegate := *asset.Delegate
		clone.Delegate = &delegate
	}
	if asset.Votes != nil {
		clone.Votes = &VoteAsset{
			Added:   cloneStrings(asset.Votes.Added),
			Removed: cloneStrings(asset.Votes.Removed),
		}
	}
	if asset.Multisignature != nil {
		clone.Multisignature = &MultisignatureAsset{
			Min:       asset.Multisignature.Min,
			Lifetime:  asset.Multisignature.Lifetime,
			Keysgroup: cloneStrings(asset.Multisignature.Keysgroup),
		}
	}
	return clone
}

// Equal returns whether asset equals to other
func (asset *DomainTransactionAsset) Equal(other *DomainTransactionAsset) bool {
	if !bytesEqual(asset.Data, other.Data) {
		return false
	}
	if (asset.Signature == nil) != (other.Signature == nil) ||
		(asset.Signature != nil && *asset.Signature != *other.Signature) {
		return false
	}
	if (asset.Delegate == nil) != (other.Delegate == nil) ||
		(asset.Delegate != nil && *asset.Delegate != *other.Delegate) {
		return false
	}
	if (asset.Votes == nil) != (other.Votes == nil) ||
		(asset.Votes != nil && (!stringsEqual(asset.Votes.Added, other.Votes.Added) ||
			!stringsEqual(asset.Votes.Removed, other.Votes.Removed))) {
		return false
	}
	if (asset.Multisignature == nil) != (other.Multisignature == nil) {
		return false
	}
	if asset.Multisignature != nil {
		if asset.Multisignature.Min != other.Multisignature.Min ||
			asset.Multisignature.Lifetime != other.Multisignature.Lifetime ||
			!stringsEqual(asset.Multisignature.Keysgroup, other.Multisignature.Keysgroup) {
			return false
		}
	}
	return true
}
