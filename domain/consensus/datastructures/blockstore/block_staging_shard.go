package blockstore

import (
	"github.com/dposnet/dposd/domain/consensus/database/serialization"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

type blockStagingShard struct {
	store    *blockStore
	toAdd    map[uint64]*externalapi.DomainBlock
	toDelete map[uint64]*externalapi.DomainBlock
	newTip   *uint64
}

func (bs *blockStore) stagingShard(stagingArea *model.StagingArea) *blockStagingShard {
	return stagingArea.GetOrCreateShard("BlockStore", func() model.StagingShard {
		return &blockStagingShard{
			store:    bs,
			toAdd:    make(map[uint64]*externalapi.DomainBlock),
			toDelete: make(map[uint64]*externalapi.DomainBlock),
		}
	}).(*blockStagingShard)
}

func (bss *blockStagingShard) Commit(dbTx model.DBTransaction) error {
	for height, block := range bss.toDelete {
		err := dbTx.Delete(bss.store.heightAsKey(height))
		if err != nil {
			return err
		}
		err = dbTx.Delete(bss.store.idAsKey(block.ID))
		if err != nil {
			return err
		}
		bss.store.cache.Remove(height)
	}

	for height, block := range bss.toAdd {
		err := dbTx.Put(bss.store.heightAsKey(height), serialization.SerializeBlock(block))
		if err != nil {
			return err
		}
		err = dbTx.Put(bss.store.idAsKey(block.ID), serialization.SerializeHeight(height))
		if err != nil {
			return err
		}
		bss.store.cache.Add(height, block)
	}

	if bss.newTip != nil {
		err := dbTx.Put(tipKey, serialization.SerializeHeight(*bss.newTip))
		if err != nil {
			return err
		}
		tip := *bss.newTip
		bss.store.tipHeight = &tip
	}

	return nil
}

func (bss *blockStagingShard) isStaged() bool {
	return len(bss.toAdd) != 0 || len(bss.toDelete) != 0 || bss.newTip != nil
}
