package consensushashing

import (
	"testing"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

func TestTransactionIDCoversSignatures(t *testing.T) {
	tx := &externalapi.DomainTransaction{
		Type:            externalapi.TransactionTypeSend,
		Timestamp:       1000,
		SenderPublicKey: "aa",
		RecipientID:     "123D",
		Amount:          5,
		Fee:             10000000,
		Signature:       []byte{1, 2, 3},
	}

	signingHash := TransactionSigningHash(tx)
	id := TransactionID(tx)

	tx.Signature = []byte{4, 5, 6}
	if !TransactionSigningHash(tx).Equal(signingHash) {
		t.Fatalf("TestTransactionIDCoversSignatures: the signing hash must not depend on the signature")
	}
	if TransactionID(tx).Equal(id) {
		t.Fatalf("TestTransactionIDCoversSignatures: the id must depend on the signature")
	}

	secondSigningHash := TransactionSecondSigningHash(tx)
	tx.SignSignature = []byte{7}
	if !TransactionSecondSigningHash(tx).Equal(secondSigningHash) {
		t.Fatalf("TestTransactionIDCoversSignatures: the second signing hash must not depend on the second signature")
	}
}

func TestBlockIDCoversSignature(t *testing.T) {
	block := &externalapi.DomainBlock{
		Height:             2,
		Timestamp:          10,
		GeneratorPublicKey: "bb",
		Signature:          []byte{1},
	}
	signingHash := BlockSigningHash(block)
	id := BlockID(block)

	block.Signature = []byte{2}
	if !BlockSigningHash(block).Equal(signingHash) {
		t.Fatalf("TestBlockIDCoversSignature: the signing hash must not depend on the signature")
	}
	if BlockID(block).Equal(id) {
		t.Fatalf("TestBlockIDCoversSignature: the id must depend on the signature")
	}
}

func TestPayload(t *testing.T) {
	txs := []*externalapi.DomainTransaction{
		{Type: externalapi.TransactionTypeSend, Amount: 1, RecipientID: "1D"},
		{Type: externalapi.TransactionTypeSend, Amount: 2, RecipientID: "1D"},
	}
	expectedLength := uint32(len(TransactionBytes(txs[0]))) + uint32(len(TransactionBytes(txs[1])))
	if PayloadLength(txs) != expectedLength {
		t.Fatalf("TestPayload: expected payload length %d, got %d", expectedLength, PayloadLength(txs))
	}

	reversed := []*externalapi.DomainTransaction{txs[1], txs[0]}
	if PayloadHash(txs).Equal(PayloadHash(reversed)) {
		t.Fatalf("TestPayload: the payload hash must depend on the transaction order")
	}
}

func TestAddress(t *testing.T) {
	address, err := AddressFromPublicKey("0123456789abcdef")
	if err != nil {
		t.Fatalf("TestAddress: AddressFromPublicKey: %+v", err)
	}
	if !IsValidAddress(address) {
		t.Fatalf("TestAddress: derived address %s is not valid", address)
	}
	again, _ := AddressFromPublicKey("0123456789abcdef")
	if again != address {
		t.Fatalf("TestAddress: address derivation is not deterministic")
	}

	_, err = AddressFromPublicKey("not hex")
	if err == nil {
		t.Fatalf("TestAddress: expected an error for a non hex public key")
	}

	tests := []struct {
		address string
		isValid bool
	}{
		{"123D", true},
		{"18446744073709551615D", true},
		{"18446744073709551616D", false},
		{"0123D", false},
		{"123", false},
		{"D", false},
		{"12a3D", false},
	}
	for _, test := range tests {
		if IsValidAddress(test.address) != test.isValid {
			t.Fatalf("TestAddress: IsValidAddress(%s) expected %t", test.address, test.isValid)
		}
	}
}
