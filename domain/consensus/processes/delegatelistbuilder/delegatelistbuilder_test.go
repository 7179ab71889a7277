package delegatelistbuilder

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/dposnet/dposd/domain/consensus/datastructures/accountstore"
	"github.com/dposnet/dposd/domain/consensus/datastructures/blockstore"
	"github.com/dposnet/dposd/domain/consensus/datastructures/roundstore"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
	"github.com/dposnet/dposd/domain/consensus/utils/hashes"
	"github.com/dposnet/dposd/domain/consensus/utils/slots"
	"github.com/dposnet/dposd/domain/consensus/utils/testutils"
	"github.com/pkg/errors"
)

func TestShuffleIsDeterministicPermutation(t *testing.T) {
	list := make([]string, 101)
	for i := range list {
		list[i] = fmt.Sprintf("%04x", i)
	}
	writer := hashes.NewRoundSeedWriter()
	writer.InfallibleWrite([]byte("seed"))
	seed := writer.Finalize()

	first := append([]string(nil), list...)
	second := append([]string(nil), list...)
	Shuffle(first, seed)
	Shuffle(second, seed)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("TestShuffleIsDeterministicPermutation: shuffles with the same seed differ at %d", i)
		}
	}

	sorted := append([]string(nil), first...)
	sort.Strings(sorted)
	for i := range sorted {
		if sorted[i] != list[i] {
			t.Fatalf("TestShuffleIsDeterministicPermutation: the shuffle is not a permutation")
		}
	}

	unchanged := 0
	for i := range first {
		if first[i] == list[i] {
			unchanged++
		}
	}
	if unchanged == len(list) {
		t.Fatalf("TestShuffleIsDeterministicPermutation: the shuffle did not move anything")
	}
}

func TestComputeDelegateList(t *testing.T) {
	db, teardown := testutils.PrepareDatabaseForTest(t, "TestComputeDelegateList")
	defer teardown()

	accountStore, err := accountstore.New(db, 10)
	if err != nil {
		t.Fatalf("accountstore.New: %+v", err)
	}
	blockStore, err := blockstore.New(db, 10)
	if err != nil {
		t.Fatalf("blockstore.New: %+v", err)
	}
	roundStore, err := roundstore.New(10)
	if err != nil {
		t.Fatalf("roundstore.New: %+v", err)
	}
	clock := slots.New(time.Unix(0, 0), 10, 3)
	builder := New(db, clock, accountStore, blockStore, roundStore)

	stagingArea := model.NewStagingArea()
	register := func(publicKey string, voteWeight int64) {
		address, err := consensushashing.AddressFromPublicKey(publicKey)
		if err != nil {
			t.Fatalf("AddressFromPublicKey: %+v", err)
		}
		_, err = accountStore.Merge(db, stagingArea, address, &externalapi.AccountDiff{
			PublicKey:  publicKey,
			Username:   "delegate_" + publicKey,
			VoteWeight: voteWeight,
		})
		if err != nil {
			t.Fatalf("Merge: %+v", err)
		}
	}

	register("aa", 10)
	register("bb", 30)
	_, err = builder.ComputeDelegateList(stagingArea, 1)
	if !errors.Is(err, ruleerrors.ErrNotEnoughDelegates) {
		t.Fatalf("TestComputeDelegateList: expected ErrNotEnoughDelegates, got %v", err)
	}

	register("cc", 20)
	register("dd", 5)
	list, err := builder.ComputeDelegateList(stagingArea, 1)
	if err != nil {
		t.Fatalf("ComputeDelegateList: %+v", err)
	}
	selected := append([]string(nil), list...)
	sort.Strings(selected)
	expected := []string{"aa", "bb", "cc"}
	for i := range expected {
		if selected[i] != expected[i] {
			t.Fatalf("TestComputeDelegateList: expected the three heaviest delegates, got %v", list)
		}
	}

	roundStore.Stage(stagingArea, &externalapi.RoundSnapshot{Round: 1, Delegates: []string{"x", "y", "z"}})
	stored, err := builder.DelegateList(stagingArea, 1)
	if err != nil {
		t.Fatalf("DelegateList: %+v", err)
	}
	if stored[0] != "x" {
		t.Fatalf("TestComputeDelegateList: expected the stored list, got %v", stored)
	}

	_, err = builder.ComputeDelegateList(stagingArea, 2)
	if !errors.Is(err, ruleerrors.ErrRoundHeightGap) {
		t.Fatalf("TestComputeDelegateList: expected ErrRoundHeightGap without the previous round's blocks, got %v", err)
	}
}
