package blockstore

import (
	"testing"

	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/utils/testutils"
)

func testBlock(height uint64, idByte byte) *externalapi.DomainBlock {
	return &externalapi.DomainBlock{
		Height: height,
		ID:     externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{idByte}),
	}
}

func TestBlockStore(t *testing.T) {
	db, teardown := testutils.PrepareDatabaseForTest(t, "TestBlockStore")
	defer teardown()

	store, err := New(db, 10)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	hasTip, err := store.HasTip(db, model.NewStagingArea())
	if err != nil {
		t.Fatalf("HasTip: %+v", err)
	}
	if hasTip {
		t.Fatalf("TestBlockStore: an empty store must not have a tip")
	}

	first, second := testBlock(1, 1), testBlock(2, 2)
	stagingArea := model.NewStagingArea()
	store.Stage(stagingArea, first)
	store.Stage(stagingArea, second)
	store.StageTip(stagingArea, 2)

	tip, err := store.Tip(db, stagingArea)
	if err != nil {
		t.Fatalf("Tip: %+v", err)
	}
	if !tip.Equal(second) {
		t.Fatalf("TestBlockStore: staged tip is not the second block")
	}
	testutils.CommitStagingArea(t, db, stagingArea)

	reopened, err := New(db, 10)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	stagingArea = model.NewStagingArea()
	block, err := reopened.Block(db, stagingArea, first.ID)
	if err != nil {
		t.Fatalf("Block: %+v", err)
	}
	if !block.Equal(first) {
		t.Fatalf("TestBlockStore: block by id is not the first block")
	}

	reopened.Delete(stagingArea, second)
	reopened.StageTip(stagingArea, 1)
	hasSecond, err := reopened.HasBlock(db, stagingArea, second.ID)
	if err != nil {
		t.Fatalf("HasBlock: %+v", err)
	}
	if hasSecond {
		t.Fatalf("TestBlockStore: a block staged for deletion must not be found")
	}
	testutils.CommitStagingArea(t, db, stagingArea)

	stagingArea = model.NewStagingArea()
	hasHeight, err := reopened.HasBlockAtHeight(db, stagingArea, 2)
	if err != nil {
		t.Fatalf("HasBlockAtHeight: %+v", err)
	}
	if hasHeight {
		t.Fatalf("TestBlockStore: the deleted height is still present")
	}
	tip, err = reopened.Tip(db, stagingArea)
	if err != nil {
		t.Fatalf("Tip: %+v", err)
	}
	if tip.Height != 1 {
		t.Fatalf("TestBlockStore: expected tip height 1, got %d", tip.Height)
	}
}
