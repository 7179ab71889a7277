package accountstore

import (
	"testing"

	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
	"github.com/dposnet/dposd/domain/consensus/utils/testutils"
	"github.com/pkg/errors"
)

const (
	delegatePublicKey = "aa01"
	voterPublicKey    = "bb02"
)

func mustAddress(t *testing.T, publicKey string) string {
	address, err := consensushashing.AddressFromPublicKey(publicKey)
	if err != nil {
		t.Fatalf("AddressFromPublicKey: %+v", err)
	}
	return address
}

func mustMerge(t *testing.T, store model.AccountStore, dbContext model.DBReader, stagingArea *model.StagingArea,
	address string, diff *externalapi.AccountDiff) []*externalapi.LedgerOp {

	ops, err := store.Merge(dbContext, stagingArea, address, diff)
	if err != nil {
		t.Fatalf("Merge %s: %+v", address, err)
	}
	return ops
}

func TestMergeCreatesAndDebits(t *testing.T) {
	db, teardown := testutils.PrepareDatabaseForTest(t, "TestMergeCreatesAndDebits")
	defer teardown()

	store, err := New(db, 10)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	stagingArea := model.NewStagingArea()
	address := mustAddress(t, voterPublicKey)

	ops := mustMerge(t, store, db, stagingArea, address, &externalapi.AccountDiff{Balance: 100})
	if len(ops) != 1 || ops[0].Previous != nil {
		t.Fatalf("TestMergeCreatesAndDebits: expected a single creating op, got %+v", ops)
	}

	_, err = store.Merge(db, stagingArea, address, &externalapi.AccountDiff{Balance: -101})
	if !errors.Is(err, ruleerrors.ErrInsufficientBalance) {
		t.Fatalf("TestMergeCreatesAndDebits: expected ErrInsufficientBalance, got %v", err)
	}

	mustMerge(t, store, db, stagingArea, address, &externalapi.AccountDiff{Balance: -40})
	testutils.CommitStagingArea(t, db, stagingArea)

	account, err := store.Account(db, model.NewStagingArea(), address)
	if err != nil {
		t.Fatalf("Account: %+v", err)
	}
	if account.Balance != 60 {
		t.Fatalf("TestMergeCreatesAndDebits: expected balance 60, got %d", account.Balance)
	}
}

func TestVoteWeightCascade(t *testing.T) {
	db, teardown := testutils.PrepareDatabaseForTest(t, "TestVoteWeightCascade")
	defer teardown()

	store, err := New(db, 10)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	stagingArea := model.NewStagingArea()
	delegateAddress := mustAddress(t, delegatePublicKey)
	voterAddress := mustAddress(t, voterPublicKey)

	mustMerge(t, store, db, stagingArea, delegateAddress, &externalapi.AccountDiff{
		PublicKey: delegatePublicKey,
		Username:  "delegate",
	})
	mustMerge(t, store, db, stagingArea, voterAddress, &externalapi.AccountDiff{Balance: 1000})

	ops := mustMerge(t, store, db, stagingArea, voterAddress, &externalapi.AccountDiff{
		VotesAdded: []string{delegatePublicKey},
	})
	if len(ops) != 2 || ops[1].Address != delegateAddress || ops[1].Diff.VoteWeight != 1000 {
		t.Fatalf("TestVoteWeightCascade: expected a vote weight op of 1000 for the delegate, got %+v", ops)
	}

	mustMerge(t, store, db, stagingArea, voterAddress, &externalapi.AccountDiff{Balance: -300})
	delegate, err := store.Account(db, stagingArea, delegateAddress)
	if err != nil {
		t.Fatalf("Account: %+v", err)
	}
	if delegate.VoteWeight != 700 {
		t.Fatalf("TestVoteWeightCascade: expected vote weight 700, got %d", delegate.VoteWeight)
	}

	mustMerge(t, store, db, stagingArea, voterAddress, &externalapi.AccountDiff{
		VotesRemoved: []string{delegatePublicKey},
	})
	delegate, err = store.Account(db, stagingArea, delegateAddress)
	if err != nil {
		t.Fatalf("Account: %+v", err)
	}
	if delegate.VoteWeight != 0 {
		t.Fatalf("TestVoteWeightCascade: expected vote weight 0 after unvoting, got %d", delegate.VoteWeight)
	}

	delegates, err := store.Delegates(db, stagingArea)
	if err != nil {
		t.Fatalf("Delegates: %+v", err)
	}
	if len(delegates) != 1 || delegates[0].Address != delegateAddress {
		t.Fatalf("TestVoteWeightCascade: expected a single delegate, got %+v", delegates)
	}
}

func TestRevertOps(t *testing.T) {
	db, teardown := testutils.PrepareDatabaseForTest(t, "TestRevertOps")
	defer teardown()

	store, err := New(db, 10)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	delegateAddress := mustAddress(t, delegatePublicKey)
	voterAddress := mustAddress(t, voterPublicKey)

	stagingArea := model.NewStagingArea()
	mustMerge(t, store, db, stagingArea, delegateAddress, &externalapi.AccountDiff{
		PublicKey: delegatePublicKey,
		Username:  "delegate",
	})
	mustMerge(t, store, db, stagingArea, voterAddress, &externalapi.AccountDiff{
		Balance:    500,
		VotesAdded: []string{delegatePublicKey},
	})
	testutils.CommitStagingArea(t, db, stagingArea)

	commitmentBefore, err := store.Commitment(db, model.NewStagingArea())
	if err != nil {
		t.Fatalf("Commitment: %+v", err)
	}

	stagingArea = model.NewStagingArea()
	newAddress := mustAddress(t, "cc03")
	var ops []*externalapi.LedgerOp
	ops = append(ops, mustMerge(t, store, db, stagingArea, voterAddress, &externalapi.AccountDiff{Balance: -200})...)
	ops = append(ops, mustMerge(t, store, db, stagingArea, newAddress, &externalapi.AccountDiff{Balance: 200})...)
	testutils.CommitStagingArea(t, db, stagingArea)

	stagingArea = model.NewStagingArea()
	store.RevertOps(stagingArea, ops)
	testutils.CommitStagingArea(t, db, stagingArea)

	stagingArea = model.NewStagingArea()
	exists, err := store.HasAccount(db, stagingArea, newAddress)
	if err != nil {
		t.Fatalf("HasAccount: %+v", err)
	}
	if exists {
		t.Fatalf("TestRevertOps: the account created by the reverted ops still exists")
	}
	delegate, err := store.Account(db, stagingArea, delegateAddress)
	if err != nil {
		t.Fatalf("Account: %+v", err)
	}
	if delegate.VoteWeight != 500 {
		t.Fatalf("TestRevertOps: expected vote weight 500, got %d", delegate.VoteWeight)
	}
	commitmentAfter, err := store.Commitment(db, stagingArea)
	if err != nil {
		t.Fatalf("Commitment: %+v", err)
	}
	if !commitmentAfter.Equal(commitmentBefore) {
		t.Fatalf("TestRevertOps: expected commitment %s, got %s", commitmentBefore, commitmentAfter)
	}
}

func TestCommitmentSurvivesReopen(t *testing.T) {
	db, teardown := testutils.PrepareDatabaseForTest(t, "TestCommitmentSurvivesReopen")
	defer teardown()

	store, err := New(db, 10)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	stagingArea := model.NewStagingArea()
	mustMerge(t, store, db, stagingArea, mustAddress(t, voterPublicKey), &externalapi.AccountDiff{Balance: 5})
	stagedCommitment, err := store.Commitment(db, stagingArea)
	if err != nil {
		t.Fatalf("Commitment: %+v", err)
	}
	testutils.CommitStagingArea(t, db, stagingArea)

	reopened, err := New(db, 10)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	committedCommitment, err := reopened.Commitment(db, model.NewStagingArea())
	if err != nil {
		t.Fatalf("Commitment: %+v", err)
	}
	if !committedCommitment.Equal(stagedCommitment) {
		t.Fatalf("TestCommitmentSurvivesReopen: expected commitment %s, got %s",
			stagedCommitment, committedCommitment)
	}
}

func TestAccountsByAddress(t *testing.T) {
	db, teardown := testutils.PrepareDatabaseForTest(t, "TestAccountsByAddress")
	defer teardown()

	store, err := New(db, 10)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	committedAddress := mustAddress(t, voterPublicKey)
	stagedAddress := mustAddress(t, delegatePublicKey)
	missingAddress := mustAddress(t, "cc03")

	stagingArea := model.NewStagingArea()
	mustMerge(t, store, db, stagingArea, committedAddress, &externalapi.AccountDiff{Balance: 100})
	testutils.CommitStagingArea(t, db, stagingArea)

	stagingArea = model.NewStagingArea()
	mustMerge(t, store, db, stagingArea, stagedAddress, &externalapi.AccountDiff{Balance: 7})
	mustMerge(t, store, db, stagingArea, committedAddress, &externalapi.AccountDiff{Balance: -30})

	accounts, err := store.AccountsByAddress(db, stagingArea,
		[]string{committedAddress, missingAddress, stagedAddress, committedAddress})
	if err != nil {
		t.Fatalf("AccountsByAddress: %+v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("TestAccountsByAddress: expected 2 accounts, got %d", len(accounts))
	}
	if _, ok := accounts[missingAddress]; ok {
		t.Fatalf("TestAccountsByAddress: an address without an account was resolved")
	}
	if balance := accounts[committedAddress].Balance; balance != 70 {
		t.Fatalf("TestAccountsByAddress: expected the staged balance 70, got %d", balance)
	}
	if balance := accounts[stagedAddress].Balance; balance != 7 {
		t.Fatalf("TestAccountsByAddress: expected the staged balance 7, got %d", balance)
	}
}
