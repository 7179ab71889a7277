package consensushashing

import (
	"bytes"
	"io"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/utils/hashes"
	"github.com/dposnet/dposd/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// txEncoding determines how far into a transaction its serialization goes
type txEncoding uint8

const (
	txEncodingFull txEncoding = iota

	// txEncodingExcludeSignatures leaves out the sender and second signatures
	txEncodingExcludeSignatures

	// txEncodingExcludeSignSignature leaves out the second signature only
	txEncodingExcludeSignSignature
)

// TransactionBytes returns the canonical serialization of the transaction,
// including the sender and second signatures but not cosigner signatures.
// It is the unit the block payload is made of.
func TransactionBytes(transaction *externalapi.DomainTransaction) []byte {
	var buf bytes.Buffer
	err := serializeTransaction(&buf, transaction, txEncodingFull)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. bytes.Buffer should never return an error"))
	}
	return buf.Bytes()
}

// TransactionID returns the id of the given transaction
func TransactionID(transaction *externalapi.DomainTransaction) *externalapi.DomainHash {
	writer := hashes.NewTransactionIDWriter()
	err := serializeTransaction(writer, transaction, txEncodingFull)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	return writer.Finalize()
}

// TransactionSigningHash returns the hash signed by the sender and by every
// cosigner
func TransactionSigningHash(transaction *externalapi.DomainTransaction) *externalapi.DomainHash {
	writer := hashes.NewTransactionSigningHashWriter()
	err := serializeTransaction(writer, transaction, txEncodingExcludeSignatures)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	return writer.Finalize()
}

// TransactionSecondSigningHash returns the hash signed with the sender's
// second public key. It covers the sender signature.
func TransactionSecondSigningHash(transaction *externalapi.DomainTransaction) *externalapi.DomainHash {
	writer := hashes.NewSecondSignatureSigningHashWriter()
	err := serializeTransaction(writer, transaction, txEncodingExcludeSignSignature)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	return writer.Finalize()
}

func serializeTransaction(w io.Writer, tx *externalapi.DomainTransaction, encoding txEncoding) error {
	err := serialization.WriteElements(w, uint8(tx.Type), tx.Timestamp, tx.SenderPublicKey, tx.RecipientID,
		tx.Amount, tx.Fee)
	if err != nil {
		return err
	}

	err = serializeAsset(w, &tx.Asset)
	if err != nil {
		return err
	}

	if encoding == txEncodingExcludeSignatures {
		return nil
	}
	err = serialization.WriteElement(w, tx.Signature)
	if err != nil {
		return err
	}

	if encoding == txEncodingExcludeSignSignature {
		return nil
	}
	return serialization.WriteElement(w, tx.SignSignature)
}

func serializeAsset(w io.Writer, asset *externalapi.DomainTransactionAsset) error {
	err := serialization.WriteElement(w, asset.Data)
	if err != nil {
		return err
	}

	err = serialization.WriteElement(w, asset.Signature != nil)
	if err != nil {
		return err
	}
	if asset.Signature != nil {
		err = serialization.WriteElement(w, asset.Signature.PublicKey)
		if err != nil {
			return err
		}
	}

	err = serialization.WriteElement(w, asset.Delegate != nil)
	if err != nil {
		return err
	}
	if asset.Delegate != nil {
		err = serialization.WriteElement(w, asset.Delegate.Username)
		if err != nil {
			return err
		}
	}

	err = serialization.WriteElement(w, asset.Votes != nil)
	if err != nil {
		return err
	}
	if asset.Votes != nil {
		err = serialization.WriteElements(w, asset.Votes.Added, asset.Votes.Removed)
		if err != nil {
			return err
		}
	}

	err = serialization.WriteElement(w, asset.Multisignature != nil)
	if err != nil {
		return err
	}
	if asset.Multisignature != nil {
		err = serialization.WriteElements(w, asset.Multisignature.Min, asset.Multisignature.Lifetime,
			asset.Multisignature.Keysgroup)
		if err != nil {
			return err
		}
	}
	return nil
}
