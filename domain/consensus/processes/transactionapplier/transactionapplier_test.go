package transactionapplier

import (
	"testing"

	"github.com/dposnet/dposd/domain/consensus/datastructures/accountstore"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
	"github.com/dposnet/dposd/domain/consensus/utils/signing"
	"github.com/dposnet/dposd/domain/consensus/utils/testutils"
	"github.com/pkg/errors"
)

func keyPairAndAddress(t *testing.T, secret string) (*externalapi.KeyPair, string) {
	keyPair, err := signing.KeyPairFromSecret(secret)
	if err != nil {
		t.Fatalf("KeyPairFromSecret: %+v", err)
	}
	address, err := consensushashing.AddressFromPublicKey(keyPair.PublicKey)
	if err != nil {
		t.Fatalf("AddressFromPublicKey: %+v", err)
	}
	return keyPair, address
}

func TestApplyTransaction(t *testing.T) {
	dbManager, teardown := testutils.PrepareDatabaseForTest(t, "TestApplyTransaction")
	defer teardown()

	accountStore, err := accountstore.New(dbManager, 10)
	if err != nil {
		t.Fatalf("TestApplyTransaction: accountstore.New: %+v", err)
	}
	applier := New(dbManager, accountStore)
	crypto := signing.New()
	stagingArea := model.NewStagingArea()

	sender, senderAddress := keyPairAndAddress(t, "sender")
	delegate, delegateAddress := keyPairAndAddress(t, "delegate")
	_, recipientAddress := keyPairAndAddress(t, "recipient")

	_, err = accountStore.Merge(dbManager, stagingArea, senderAddress, &externalapi.AccountDiff{Balance: 1000})
	if err != nil {
		t.Fatalf("TestApplyTransaction: Merge: %+v", err)
	}
	_, err = accountStore.Merge(dbManager, stagingArea, delegateAddress,
		&externalapi.AccountDiff{PublicKey: delegate.PublicKey, Username: "delegate"})
	if err != nil {
		t.Fatalf("TestApplyTransaction: Merge: %+v", err)
	}
	commitmentBefore, err := accountStore.Commitment(dbManager, stagingArea)
	if err != nil {
		t.Fatalf("TestApplyTransaction: Commitment: %+v", err)
	}

	vote := &externalapi.DomainTransaction{
		Type:  externalapi.TransactionTypeVote,
		Fee:   10,
		Asset: externalapi.DomainTransactionAsset{Votes: &externalapi.VoteAsset{Added: []string{delegate.PublicKey}}},
	}
	err = signing.SignTransaction(crypto, vote, sender)
	if err != nil {
		t.Fatalf("TestApplyTransaction: SignTransaction: %+v", err)
	}
	voteOps, err := applier.ApplyTransaction(stagingArea, vote)
	if err != nil {
		t.Fatalf("TestApplyTransaction: ApplyTransaction(vote): %+v", err)
	}

	send := &externalapi.DomainTransaction{
		Type:        externalapi.TransactionTypeSend,
		RecipientID: recipientAddress,
		Amount:      500,
		Fee:         10,
	}
	err = signing.SignTransaction(crypto, send, sender)
	if err != nil {
		t.Fatalf("TestApplyTransaction: SignTransaction: %+v", err)
	}
	sendOps, err := applier.ApplyTransaction(stagingArea, send)
	if err != nil {
		t.Fatalf("TestApplyTransaction: ApplyTransaction(send): %+v", err)
	}

	senderAccount, err := accountStore.Account(dbManager, stagingArea, senderAddress)
	if err != nil {
		t.Fatalf("TestApplyTransaction: Account: %+v", err)
	}
	if senderAccount.Balance != 480 || senderAccount.PublicKey != sender.PublicKey ||
		!senderAccount.HasVoteFor(delegate.PublicKey) {
		t.Fatalf("TestApplyTransaction: unexpected sender account %+v", senderAccount)
	}
	delegateAccount, err := accountStore.Account(dbManager, stagingArea, delegateAddress)
	if err != nil {
		t.Fatalf("TestApplyTransaction: Account: %+v", err)
	}
	if delegateAccount.VoteWeight != 480 {
		t.Fatalf("TestApplyTransaction: expected vote weight 480, got %d", delegateAccount.VoteWeight)
	}
	recipientAccount, err := accountStore.Account(dbManager, stagingArea, recipientAddress)
	if err != nil {
		t.Fatalf("TestApplyTransaction: Account: %+v", err)
	}
	if recipientAccount.Balance != 500 {
		t.Fatalf("TestApplyTransaction: expected recipient balance 500, got %d", recipientAccount.Balance)
	}

	overspend := &externalapi.DomainTransaction{
		Type:        externalapi.TransactionTypeSend,
		RecipientID: recipientAddress,
		Amount:      471,
		Fee:         10,
	}
	err = signing.SignTransaction(crypto, overspend, sender)
	if err != nil {
		t.Fatalf("TestApplyTransaction: SignTransaction: %+v", err)
	}
	_, err = applier.ApplyTransaction(stagingArea, overspend)
	if !errors.Is(err, ruleerrors.ErrInsufficientBalance) {
		t.Fatalf("TestApplyTransaction: expected ErrInsufficientBalance, got %v", err)
	}

	accountStore.RevertOps(stagingArea, sendOps)
	accountStore.RevertOps(stagingArea, voteOps)
	commitmentAfter, err := accountStore.Commitment(dbManager, stagingArea)
	if err != nil {
		t.Fatalf("TestApplyTransaction: Commitment: %+v", err)
	}
	if !commitmentAfter.Equal(commitmentBefore) {
		t.Fatalf("TestApplyTransaction: reverting the ops did not restore the commitment")
	}
	hasRecipient, err := accountStore.HasAccount(dbManager, stagingArea, recipientAddress)
	if err != nil {
		t.Fatalf("TestApplyTransaction: HasAccount: %+v", err)
	}
	if hasRecipient {
		t.Fatalf("TestApplyTransaction: the recipient account should have been removed")
	}
}

func TestApplyGenesisTransaction(t *testing.T) {
	dbManager, teardown := testutils.PrepareDatabaseForTest(t, "TestApplyGenesisTransaction")
	defer teardown()

	accountStore, err := accountstore.New(dbManager, 10)
	if err != nil {
		t.Fatalf("TestApplyGenesisTransaction: accountstore.New: %+v", err)
	}
	applier := New(dbManager, accountStore)
	crypto := signing.New()
	stagingArea := model.NewStagingArea()

	genesis, genesisAddress := keyPairAndAddress(t, "genesis")
	delegate, delegateAddress := keyPairAndAddress(t, "delegate")

	transactions := []*externalapi.DomainTransaction{
		{Type: externalapi.TransactionTypeSend, RecipientID: delegateAddress, Amount: 1000},
		{Type: externalapi.TransactionTypeDelegate,
			Asset: externalapi.DomainTransactionAsset{Delegate: &externalapi.DelegateAsset{Username: "genesis_1"}}},
		{Type: externalapi.TransactionTypeVote,
			Asset: externalapi.DomainTransactionAsset{Votes: &externalapi.VoteAsset{Added: []string{delegate.PublicKey}}}},
	}
	signers := []*externalapi.KeyPair{genesis, delegate, delegate}
	for i, transaction := range transactions {
		err = signing.SignTransaction(crypto, transaction, signers[i])
		if err != nil {
			t.Fatalf("TestApplyGenesisTransaction: SignTransaction: %+v", err)
		}
		_, err = applier.ApplyGenesisTransaction(stagingArea, transaction)
		if err != nil {
			t.Fatalf("TestApplyGenesisTransaction: ApplyGenesisTransaction %d: %+v", i, err)
		}
	}

	genesisAccount, err := accountStore.Account(dbManager, stagingArea, genesisAddress)
	if err != nil {
		t.Fatalf("TestApplyGenesisTransaction: Account: %+v", err)
	}
	if genesisAccount.Balance != 0 || genesisAccount.PublicKey != genesis.PublicKey {
		t.Fatalf("TestApplyGenesisTransaction: unexpected genesis account %+v", genesisAccount)
	}

	delegateAccount, err := accountStore.Account(dbManager, stagingArea, delegateAddress)
	if err != nil {
		t.Fatalf("TestApplyGenesisTransaction: Account: %+v", err)
	}
	if delegateAccount.Balance != 1000 || !delegateAccount.IsDelegate || delegateAccount.Username != "genesis_1" ||
		delegateAccount.VoteWeight != 1000 || delegateAccount.PublicKey != delegate.PublicKey {
		t.Fatalf("TestApplyGenesisTransaction: unexpected delegate account %+v", delegateAccount)
	}
}
