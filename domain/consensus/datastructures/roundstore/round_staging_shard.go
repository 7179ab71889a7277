package roundstore

import (
	"github.com/dposnet/dposd/domain/consensus/database/serialization"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

type roundStagingShard struct {
	store    *roundStore
	toAdd    map[uint64]*externalapi.RoundSnapshot
	toDelete map[uint64]struct{}

	// pruned snapshots, keyed by the round whose closing pruned them
	prunedToAdd    map[uint64]*externalapi.RoundSnapshot
	prunedToDelete map[uint64]struct{}
}

func (rs *roundStore) stagingShard(stagingArea *model.StagingArea) *roundStagingShard {
	return stagingArea.GetOrCreateShard("RoundStore", func() model.StagingShard {
		return &roundStagingShard{
			store:    rs,
			toAdd:    make(map[uint64]*externalapi.RoundSnapshot),
			toDelete: make(map[uint64]struct{}),

			prunedToAdd:    make(map[uint64]*externalapi.RoundSnapshot),
			prunedToDelete: make(map[uint64]struct{}),
		}
	}).(*roundStagingShard)
}

func (rss *roundStagingShard) Commit(dbTx model.DBTransaction) error {
	for round, snapshot := range rss.toAdd {
		err := dbTx.Put(rss.store.roundAsKey(round), serialization.SerializeRoundSnapshot(snapshot))
		if err != nil {
			return err
		}
		rss.store.cache.Add(round, snapshot)
	}

	for round := range rss.toDelete {
		err := dbTx.Delete(rss.store.roundAsKey(round))
		if err != nil {
			return err
		}
		rss.store.cache.Remove(round)
	}

	for closedRound, snapshot := range rss.prunedToAdd {
		err := dbTx.Put(rss.store.prunedRoundAsKey(closedRound), serialization.SerializeRoundSnapshot(snapshot))
		if err != nil {
			return err
		}
	}

	for closedRound := range rss.prunedToDelete {
		err := dbTx.Delete(rss.store.prunedRoundAsKey(closedRound))
		if err != nil {
			return err
		}
	}

	return nil
}

func (rss *roundStagingShard) isStaged() bool {
	return len(rss.toAdd) != 0 || len(rss.toDelete) != 0 ||
		len(rss.prunedToAdd) != 0 || len(rss.prunedToDelete) != 0
}
