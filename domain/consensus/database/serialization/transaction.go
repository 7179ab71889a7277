package serialization

import (
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

func appendTransaction(b []byte, transaction *externalapi.DomainTransaction) []byte {
	b = appendHash(b, 1, transaction.ID)
	b = appendUint64(b, 2, uint64(transaction.Type))
	b = appendInt64(b, 3, transaction.Timestamp)
	b = appendString(b, 4, transaction.SenderPublicKey)
	b = appendString(b, 5, transaction.SenderID)
	b = appendString(b, 6, transaction.RecipientID)
	b = appendUint64(b, 7, transaction.Amount)
	b = appendUint64(b, 8, transaction.Fee)
	b = appendMessage(b, 9, appendTransactionAsset(nil, &transaction.Asset))
	b = appendBytes(b, 10, transaction.Signature)
	b = appendBytes(b, 11, transaction.SignSignature)
	for _, signature := range transaction.Signatures {
		b = appendMessage(b, 12, signature)
	}
	return b
}

func appendTransactionAsset(b []byte, asset *externalapi.DomainTransactionAsset) []byte {
	b = appendBytes(b, 1, asset.Data)
	if asset.Signature != nil {
		b = appendMessage(b, 2, appendString(nil, 1, asset.Signature.PublicKey))
	}
	if asset.Delegate != nil {
		b = appendMessage(b, 3, appendString(nil, 1, asset.Delegate.Username))
	}
	if asset.Votes != nil {
		votes := appendStrings(nil, 1, asset.Votes.Added)
		votes = appendStrings(votes, 2, asset.Votes.Removed)
		b = appendMessage(b, 4, votes)
	}
	if asset.Multisignature != nil {
		multisignature := appendUint64(nil, 1, uint64(asset.Multisignature.Min))
		multisignature = appendUint64(multisignature, 2, uint64(asset.Multisignature.Lifetime))
		multisignature = appendStrings(multisignature, 3, asset.Multisignature.Keysgroup)
		b = appendMessage(b, 5, multisignature)
	}
	return b
}

func deserializeTransaction(transactionBytes []byte) (*externalapi.DomainTransaction, error) {
	transaction := &externalapi.DomainTransaction{}
	r := newFieldReader(transactionBytes)
	for r.next() {
		switch r.num {
		case 1:
			transaction.ID = r.hash()
		case 2:
			transaction.Type = externalapi.TransactionType(r.uint32())
		case 3:
			transaction.Timestamp = r.int64()
		case 4:
			transaction.SenderPublicKey = r.string()
		case 5:
			transaction.SenderID = r.string()
		case 6:
			transaction.RecipientID = r.string()
		case 7:
			transaction.Amount = r.uint64()
		case 8:
			transaction.Fee = r.uint64()
		case 9:
			assetBytes := r.bytes()
			if r.err != nil {
				break
			}
			asset, err := deserializeTransactionAsset(assetBytes)
			if err != nil {
				return nil, err
			}
			transaction.Asset = *asset
		case 10:
			transaction.Signature = r.bytes()
		case 11:
			transaction.SignSignature = r.bytes()
		case 12:
			transaction.Signatures = append(transaction.Signatures, r.bytes())
		default:
			r.skip()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return transaction, nil
}

func deserializeTransactionAsset(assetBytes []byte) (*externalapi.DomainTransactionAsset, error) {
	asset := &externalapi.DomainTransactionAsset{}
	r := newFieldReader(assetBytes)
	for r.next() {
		switch r.num {
		case 1:
			asset.Data = r.bytes()
		case 2:
			asset.Signature = &externalapi.SignatureAsset{}
			inner := newFieldReader(r.bytes())
			for inner.next() {
				if inner.num == 1 {
					asset.Signature.PublicKey = inner.string()
				} else {
					inner.skip()
				}
			}
			if inner.err != nil {
				return nil, inner.err
			}
		case 3:
			asset.Delegate = &externalapi.DelegateAsset{}
			inner := newFieldReader(r.bytes())
			for inner.next() {
				if inner.num == 1 {
					asset.Delegate.Username = inner.string()
				} else {
					inner.skip()
				}
			}
			if inner.err != nil {
				return nil, inner.err
			}
		case 4:
			asset.Votes = &externalapi.VoteAsset{}
			inner := newFieldReader(r.bytes())
			for inner.next() {
				switch inner.num {
				case 1:
					asset.Votes.Added = append(asset.Votes.Added, inner.string())
				case 2:
					asset.Votes.Removed = append(asset.Votes.Removed, inner.string())
				default:
					inner.skip()
				}
			}
			if inner.err != nil {
				return nil, inner.err
			}
		case 5:
			asset.Multisignature = &externalapi.MultisignatureAsset{}
			inner := newFieldReader(r.bytes())
			for inner.next() {
				switch inner.num {
				case 1:
					asset.Multisignature.Min = inner.uint32()
				case 2:
					asset.Multisignature.Lifetime = inner.uint32()
				case 3:
					asset.Multisignature.Keysgroup = append(asset.Multisignature.Keysgroup, inner.string())
				default:
					inner.skip()
				}
			}
			if inner.err != nil {
				return nil, inner.err
			}
		default:
			r.skip()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return asset, nil
}
