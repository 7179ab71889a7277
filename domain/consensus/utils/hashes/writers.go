package hashes

import (
	"hash"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

const (
	blockIDDomain                = "BlockID"
	blockSigningDomain           = "BlockSigningHash"
	payloadDomain                = "PayloadHash"
	transactionIDDomain          = "TransactionID"
	transactionSigningDomain     = "TransactionSigningHash"
	secondSignatureSigningDomain = "SecondSignatureSigningHash"
	roundSeedDomain              = "RoundSeed"
	publicKeyAddressDomain       = "PublicKeyAddress"
)

// HashWriter is used to incrementally hash data without concatenating all of the data to a single buffer
// it exposes an io.Writer api and a Finalize function to get the resulting hash.
// The used hash function is blake2b.
// This can only be created via one of the domain separated constructors
type HashWriter struct {
	hash.Hash
}

// InfallibleWrite is just like write but doesn't return anything
func (h HashWriter) InfallibleWrite(p []byte) {
	// This write can never return an error, this is part of the hash.Hash interface contract.
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. hash.Hash interface promises to not return errors."))
	}
}

// Finalize returns the resulting hash
func (h HashWriter) Finalize() *externalapi.DomainHash {
	var sum [externalapi.DomainHashSize]byte
	copy(sum[:], h.Sum(sum[:0]))
	return externalapi.NewDomainHashFromByteArray(&sum)
}

func newHashWriter(domain string) HashWriter {
	blake, err := blake2b.New256([]byte(domain))
	if err != nil {
		panic(errors.Wrapf(err, "this should never happen. %s is less than 64 bytes", domain))
	}
	return HashWriter{blake}
}

// NewBlockIDWriter returns a new HashWriter used for block ids
func NewBlockIDWriter() HashWriter {
	return newHashWriter(blockIDDomain)
}

// NewBlockSigningHashWriter returns a new HashWriter used for the hash a
// block generator signs
func NewBlockSigningHashWriter() HashWriter {
	return newHashWriter(blockSigningDomain)
}

// NewPayloadHashWriter returns a new HashWriter used for block payload hashes
func NewPayloadHashWriter() HashWriter {
	return newHashWriter(payloadDomain)
}

// NewTransactionIDWriter returns a new HashWriter used for transaction ids
func NewTransactionIDWriter() HashWriter {
	return newHashWriter(transactionIDDomain)
}

// NewTransactionSigningHashWriter returns a new HashWriter used for the hash
// signed by a transaction sender and its cosigners
func NewTransactionSigningHashWriter() HashWriter {
	return newHashWriter(transactionSigningDomain)
}

// NewSecondSignatureSigningHashWriter returns a new HashWriter used for the
// hash signed with a second public key
func NewSecondSignatureSigningHashWriter() HashWriter {
	return newHashWriter(secondSignatureSigningDomain)
}

// NewRoundSeedWriter returns a new HashWriter used for delegate list seeds
func NewRoundSeedWriter() HashWriter {
	return newHashWriter(roundSeedDomain)
}

// NewPublicKeyAddressWriter returns a new HashWriter used to derive
// addresses from public keys
func NewPublicKeyAddressWriter() HashWriter {
	return newHashWriter(publicKeyAddressDomain)
}
