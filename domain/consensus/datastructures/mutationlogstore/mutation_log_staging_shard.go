package mutationlogstore

import (
	"github.com/dposnet/dposd/domain/consensus/database/serialization"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

type mutationLogStagingShard struct {
	store    *mutationLogStore
	toAdd    map[uint64][]*externalapi.LedgerOp
	toDelete map[uint64]struct{}
}

func (mls *mutationLogStore) stagingShard(stagingArea *model.StagingArea) *mutationLogStagingShard {
	return stagingArea.GetOrCreateShard("MutationLogStore", func() model.StagingShard {
		return &mutationLogStagingShard{
			store:    mls,
			toAdd:    make(map[uint64][]*externalapi.LedgerOp),
			toDelete: make(map[uint64]struct{}),
		}
	}).(*mutationLogStagingShard)
}

func (mlss *mutationLogStagingShard) Commit(dbTx model.DBTransaction) error {
	for height, ops := range mlss.toAdd {
		err := dbTx.Put(mlss.store.heightAsKey(height), serialization.SerializeLedgerOps(ops))
		if err != nil {
			return err
		}
	}

	for height := range mlss.toDelete {
		err := dbTx.Delete(mlss.store.heightAsKey(height))
		if err != nil {
			return err
		}
	}

	return nil
}

func (mlss *mutationLogStagingShard) isStaged() bool {
	return len(mlss.toAdd) != 0 || len(mlss.toDelete) != 0
}
