package signing

import (
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
)

// SignTransaction binds the transaction to the sender key pair, signs it
// and sets its id
func SignTransaction(crypto model.CryptoProvider, transaction *externalapi.DomainTransaction,
	keyPair *externalapi.KeyPair) error {

	senderID, err := consensushashing.AddressFromPublicKey(keyPair.PublicKey)
	if err != nil {
		return err
	}
	transaction.SenderPublicKey = keyPair.PublicKey
	transaction.SenderID = senderID
	transaction.Signature = nil
	transaction.SignSignature = nil

	signature, err := crypto.Sign(consensushashing.TransactionSigningHash(transaction), keyPair)
	if err != nil {
		return err
	}
	transaction.Signature = signature
	transaction.ID = consensushashing.TransactionID(transaction)
	return nil
}

// SecondSignTransaction adds the signature of the sender's second key pair
// to an already signed transaction and updates its id
func SecondSignTransaction(crypto model.CryptoProvider, transaction *externalapi.DomainTransaction,
	secondKeyPair *externalapi.KeyPair) error {

	signSignature, err := crypto.Sign(consensushashing.TransactionSecondSigningHash(transaction), secondKeyPair)
	if err != nil {
		return err
	}
	transaction.SignSignature = signSignature
	transaction.ID = consensushashing.TransactionID(transaction)
	return nil
}

// CosignTransaction returns the signature of a keysgroup member over the
// transaction. Cosigner signatures are not part of the transaction id.
func CosignTransaction(crypto model.CryptoProvider, transaction *externalapi.DomainTransaction,
	keyPair *externalapi.KeyPair) ([]byte, error) {

	return crypto.Sign(consensushashing.TransactionSigningHash(transaction), keyPair)
}

// SignBlock signs the block with the generator key pair and sets its id
func SignBlock(crypto model.CryptoProvider, block *externalapi.DomainBlock, keyPair *externalapi.KeyPair) error {
	block.GeneratorPublicKey = keyPair.PublicKey
	signature, err := crypto.Sign(consensushashing.BlockSigningHash(block), keyPair)
	if err != nil {
		return err
	}
	block.Signature = signature
	block.ID = consensushashing.BlockID(block)
	return nil
}
