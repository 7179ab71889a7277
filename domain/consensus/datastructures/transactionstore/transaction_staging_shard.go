package transactionstore

import (
	"github.com/dposnet/dposd/domain/consensus/database/serialization"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

type transactionStagingShard struct {
	store    *transactionStore
	toAdd    map[externalapi.DomainHash]uint64
	toDelete map[externalapi.DomainHash]struct{}
}

func (ts *transactionStore) stagingShard(stagingArea *model.StagingArea) *transactionStagingShard {
	return stagingArea.GetOrCreateShard("TransactionStore", func() model.StagingShard {
		return &transactionStagingShard{
			store:    ts,
			toAdd:    make(map[externalapi.DomainHash]uint64),
			toDelete: make(map[externalapi.DomainHash]struct{}),
		}
	}).(*transactionStagingShard)
}

func (tss *transactionStagingShard) Commit(dbTx model.DBTransaction) error {
	for transactionID, height := range tss.toAdd {
		transactionID := transactionID
		err := dbTx.Put(tss.store.idAsKey(&transactionID), serialization.SerializeHeight(height))
		if err != nil {
			return err
		}
		tss.store.cache.Add(transactionID, height)
	}

	for transactionID := range tss.toDelete {
		transactionID := transactionID
		err := dbTx.Delete(tss.store.idAsKey(&transactionID))
		if err != nil {
			return err
		}
		tss.store.cache.Remove(transactionID)
	}

	return nil
}

func (tss *transactionStagingShard) isStaged() bool {
	return len(tss.toAdd) != 0 || len(tss.toDelete) != 0
}
