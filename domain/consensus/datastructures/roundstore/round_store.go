package roundstore

import (
	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/database/serialization"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

var (
	bucket       = database.MakeBucket([]byte("round-snapshots"))
	prunedBucket = database.MakeBucket([]byte("pruned-round-snapshots"))
)

// roundStore represents a store of round snapshots
type roundStore struct {
	cache *lru.Cache
}

// New instantiates a new RoundStore
func New(cacheSize int) (model.RoundStore, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &roundStore{cache: cache}, nil
}

// Stage stages the given round snapshot, replacing any previous snapshot of
// the same round
func (rs *roundStore) Stage(stagingArea *model.StagingArea, snapshot *externalapi.RoundSnapshot) {
	stagingShard := rs.stagingShard(stagingArea)
	delete(stagingShard.toDelete, snapshot.Round)
	stagingShard.toAdd[snapshot.Round] = snapshot.Clone()
}

// Delete stages the removal of the snapshot of the given round
func (rs *roundStore) Delete(stagingArea *model.StagingArea, round uint64) {
	stagingShard := rs.stagingShard(stagingArea)
	delete(stagingShard.toAdd, round)
	stagingShard.toDelete[round] = struct{}{}
}

func (rs *roundStore) IsStaged(stagingArea *model.StagingArea) bool {
	return rs.stagingShard(stagingArea).isStaged()
}

// RoundSnapshot gets the snapshot of the given round
func (rs *roundStore) RoundSnapshot(dbContext model.DBReader, stagingArea *model.StagingArea,
	round uint64) (*externalapi.RoundSnapshot, error) {

	stagingShard := rs.stagingShard(stagingArea)
	if snapshot, ok := stagingShard.toAdd[round]; ok {
		return snapshot.Clone(), nil
	}
	if _, ok := stagingShard.toDelete[round]; ok {
		return nil, errors.Wrapf(database.ErrNotFound, "snapshot of round %d is staged for deletion", round)
	}

	if snapshot, ok := rs.cache.Get(round); ok {
		return snapshot.(*externalapi.RoundSnapshot).Clone(), nil
	}

	snapshotBytes, err := dbContext.Get(rs.roundAsKey(round))
	if err != nil {
		return nil, err
	}
	snapshot, err := serialization.DeserializeRoundSnapshot(snapshotBytes)
	if err != nil {
		return nil, err
	}
	rs.cache.Add(round, snapshot)
	return snapshot.Clone(), nil
}

// HasRoundSnapshot returns whether a snapshot of the given round exists
func (rs *roundStore) HasRoundSnapshot(dbContext model.DBReader, stagingArea *model.StagingArea,
	round uint64) (bool, error) {

	stagingShard := rs.stagingShard(stagingArea)
	if _, ok := stagingShard.toAdd[round]; ok {
		return true, nil
	}
	if _, ok := stagingShard.toDelete[round]; ok {
		return false, nil
	}
	if rs.cache.Contains(round) {
		return true, nil
	}
	return dbContext.Has(rs.roundAsKey(round))
}

// StagePruned keeps snapshot, which the closing of closedRound pruned, so
// that it can be restored when closedRound is reopened
func (rs *roundStore) StagePruned(stagingArea *model.StagingArea, closedRound uint64,
	snapshot *externalapi.RoundSnapshot) {

	stagingShard := rs.stagingShard(stagingArea)
	delete(stagingShard.prunedToDelete, closedRound)
	stagingShard.prunedToAdd[closedRound] = snapshot.Clone()
}

// DeletePruned stages the removal of the snapshot pruned by the closing of
// closedRound
func (rs *roundStore) DeletePruned(stagingArea *model.StagingArea, closedRound uint64) {
	stagingShard := rs.stagingShard(stagingArea)
	delete(stagingShard.prunedToAdd, closedRound)
	stagingShard.prunedToDelete[closedRound] = struct{}{}
}

// PrunedSnapshot gets the snapshot the closing of closedRound pruned
func (rs *roundStore) PrunedSnapshot(dbContext model.DBReader, stagingArea *model.StagingArea,
	closedRound uint64) (*externalapi.RoundSnapshot, error) {

	stagingShard := rs.stagingShard(stagingArea)
	if snapshot, ok := stagingShard.prunedToAdd[closedRound]; ok {
		return snapshot.Clone(), nil
	}
	if _, ok := stagingShard.prunedToDelete[closedRound]; ok {
		return nil, errors.Wrapf(database.ErrNotFound, "the snapshot pruned by round %d is staged for deletion",
			closedRound)
	}

	snapshotBytes, err := dbContext.Get(rs.prunedRoundAsKey(closedRound))
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeRoundSnapshot(snapshotBytes)
}

func (rs *roundStore) prunedRoundAsKey(closedRound uint64) model.DBKey {
	return prunedBucket.Key(serialization.SerializeHeight(closedRound))
}

func (rs *roundStore) roundAsKey(round uint64) model.DBKey {
	return bucket.Key(serialization.SerializeHeight(round))
}
