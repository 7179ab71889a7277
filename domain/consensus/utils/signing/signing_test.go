package signing

import (
	"testing"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
)

func TestSignAndVerifyTransaction(t *testing.T) {
	crypto := New()
	keyPair, err := KeyPairFromSecret("TestSignAndVerifyTransaction")
	if err != nil {
		t.Fatalf("TestSignAndVerifyTransaction: KeyPairFromSecret: %+v", err)
	}
	if !IsValidPublicKey(keyPair.PublicKey) {
		t.Fatalf("TestSignAndVerifyTransaction: derived public key %s is not valid", keyPair.PublicKey)
	}

	transaction := &externalapi.DomainTransaction{
		Type:        externalapi.TransactionTypeSend,
		Timestamp:   100,
		RecipientID: "12345D",
		Amount:      1,
		Fee:         10000000,
	}
	err = SignTransaction(crypto, transaction, keyPair)
	if err != nil {
		t.Fatalf("TestSignAndVerifyTransaction: SignTransaction: %+v", err)
	}

	expectedSenderID, _ := consensushashing.AddressFromPublicKey(keyPair.PublicKey)
	if transaction.SenderID != expectedSenderID {
		t.Fatalf("TestSignAndVerifyTransaction: expected sender %s, got %s", expectedSenderID, transaction.SenderID)
	}
	if !transaction.ID.Equal(consensushashing.TransactionID(transaction)) {
		t.Fatalf("TestSignAndVerifyTransaction: the transaction id was not set")
	}

	isValid, err := crypto.Verify(consensushashing.TransactionSigningHash(transaction), transaction.Signature,
		keyPair.PublicKey)
	if err != nil {
		t.Fatalf("TestSignAndVerifyTransaction: Verify: %+v", err)
	}
	if !isValid {
		t.Fatalf("TestSignAndVerifyTransaction: the signature unexpectedly does not verify")
	}

	transaction.Amount++
	isValid, err = crypto.Verify(consensushashing.TransactionSigningHash(transaction), transaction.Signature,
		keyPair.PublicKey)
	if err != nil {
		t.Fatalf("TestSignAndVerifyTransaction: Verify: %+v", err)
	}
	if isValid {
		t.Fatalf("TestSignAndVerifyTransaction: the signature unexpectedly verifies a modified transaction")
	}

	isValid, err = crypto.Verify(consensushashing.TransactionSigningHash(transaction), []byte{1, 2, 3},
		keyPair.PublicKey)
	if err != nil || isValid {
		t.Fatalf("TestSignAndVerifyTransaction: a malformed signature should fail verification without error")
	}

	_, err = crypto.Verify(consensushashing.TransactionSigningHash(transaction), transaction.Signature, "zz")
	if err == nil {
		t.Fatalf("TestSignAndVerifyTransaction: a malformed public key should return an error")
	}
}

func TestKeyPairFromSecretIsDeterministic(t *testing.T) {
	first, err := KeyPairFromSecret("delegate")
	if err != nil {
		t.Fatalf("TestKeyPairFromSecretIsDeterministic: %+v", err)
	}
	second, err := KeyPairFromSecret("delegate")
	if err != nil {
		t.Fatalf("TestKeyPairFromSecretIsDeterministic: %+v", err)
	}
	if first.PublicKey != second.PublicKey {
		t.Fatalf("TestKeyPairFromSecretIsDeterministic: got different public keys %s and %s",
			first.PublicKey, second.PublicKey)
	}

	random, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("TestKeyPairFromSecretIsDeterministic: GenerateKeyPair: %+v", err)
	}
	if random.PublicKey == first.PublicKey {
		t.Fatalf("TestKeyPairFromSecretIsDeterministic: a random key pair collided with a derived one")
	}
}

func TestSignBlock(t *testing.T) {
	crypto := New()
	keyPair, err := KeyPairFromSecret("TestSignBlock")
	if err != nil {
		t.Fatalf("TestSignBlock: KeyPairFromSecret: %+v", err)
	}
	block := &externalapi.DomainBlock{Height: 2, Timestamp: 20}
	err = SignBlock(crypto, block, keyPair)
	if err != nil {
		t.Fatalf("TestSignBlock: SignBlock: %+v", err)
	}
	if block.GeneratorPublicKey != keyPair.PublicKey {
		t.Fatalf("TestSignBlock: the generator public key was not set")
	}
	isValid, err := crypto.Verify(consensushashing.BlockSigningHash(block), block.Signature, keyPair.PublicKey)
	if err != nil || !isValid {
		t.Fatalf("TestSignBlock: the block signature does not verify (err: %v)", err)
	}
	if !block.ID.Equal(consensushashing.BlockID(block)) {
		t.Fatalf("TestSignBlock: the block id was not set")
	}
}
