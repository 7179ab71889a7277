package mutationlogstore

import (
	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/database/serialization"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("mutation-logs"))

// mutationLogStore represents a store of the ledger ops applied by every
// block. The logs are only read when a block is deleted, so they are not
// cached.
type mutationLogStore struct{}

// New instantiates a new MutationLogStore
func New() model.MutationLogStore {
	return &mutationLogStore{}
}

// Stage stages the ordered ledger ops applied by the block at height
func (mls *mutationLogStore) Stage(stagingArea *model.StagingArea, height uint64, ops []*externalapi.LedgerOp) {
	stagingShard := mls.stagingShard(stagingArea)
	opsClone := make([]*externalapi.LedgerOp, len(ops))
	for i, op := range ops {
		opsClone[i] = op.Clone()
	}
	delete(stagingShard.toDelete, height)
	stagingShard.toAdd[height] = opsClone
}

// Delete stages the removal of the mutation log of height
func (mls *mutationLogStore) Delete(stagingArea *model.StagingArea, height uint64) {
	stagingShard := mls.stagingShard(stagingArea)
	if _, ok := stagingShard.toAdd[height]; ok {
		delete(stagingShard.toAdd, height)
		return
	}
	stagingShard.toDelete[height] = struct{}{}
}

func (mls *mutationLogStore) IsStaged(stagingArea *model.StagingArea) bool {
	return mls.stagingShard(stagingArea).isStaged()
}

// MutationLog returns the ledger ops applied by the block at height
func (mls *mutationLogStore) MutationLog(dbContext model.DBReader, stagingArea *model.StagingArea,
	height uint64) ([]*externalapi.LedgerOp, error) {

	stagingShard := mls.stagingShard(stagingArea)
	if ops, ok := stagingShard.toAdd[height]; ok {
		opsClone := make([]*externalapi.LedgerOp, len(ops))
		for i, op := range ops {
			opsClone[i] = op.Clone()
		}
		return opsClone, nil
	}
	if _, ok := stagingShard.toDelete[height]; ok {
		return nil, errors.Wrapf(database.ErrNotFound, "mutation log of height %d is staged for deletion", height)
	}

	opsBytes, err := dbContext.Get(mls.heightAsKey(height))
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeLedgerOps(opsBytes)
}

func (mls *mutationLogStore) heightAsKey(height uint64) model.DBKey {
	return bucket.Key(serialization.SerializeHeight(height))
}
