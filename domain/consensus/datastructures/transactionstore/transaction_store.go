package transactionstore

import (
	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/database/serialization"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("transactions"))

// transactionStore represents a store of confirmed transaction ids
type transactionStore struct {
	cache *lru.Cache
}

// New instantiates a new TransactionStore
func New(cacheSize int) (model.TransactionStore, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &transactionStore{cache: cache}, nil
}

// Stage stages the given transaction as confirmed at the given height
func (ts *transactionStore) Stage(stagingArea *model.StagingArea, transactionID *externalapi.DomainHash, height uint64) {
	stagingShard := ts.stagingShard(stagingArea)
	delete(stagingShard.toDelete, *transactionID)
	stagingShard.toAdd[*transactionID] = height
}

// Delete stages the removal of the given transaction
func (ts *transactionStore) Delete(stagingArea *model.StagingArea, transactionID *externalapi.DomainHash) {
	stagingShard := ts.stagingShard(stagingArea)
	if _, ok := stagingShard.toAdd[*transactionID]; ok {
		delete(stagingShard.toAdd, *transactionID)
		return
	}
	stagingShard.toDelete[*transactionID] = struct{}{}
}

func (ts *transactionStore) IsStaged(stagingArea *model.StagingArea) bool {
	return ts.stagingShard(stagingArea).isStaged()
}

// Has returns whether the given transaction is confirmed
func (ts *transactionStore) Has(dbContext model.DBReader, stagingArea *model.StagingArea,
	transactionID *externalapi.DomainHash) (bool, error) {

	_, err := ts.BlockHeight(dbContext, stagingArea, transactionID)
	if database.IsNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// BlockHeight returns the height of the block that confirmed the given
// transaction
func (ts *transactionStore) BlockHeight(dbContext model.DBReader, stagingArea *model.StagingArea,
	transactionID *externalapi.DomainHash) (uint64, error) {

	stagingShard := ts.stagingShard(stagingArea)
	if height, ok := stagingShard.toAdd[*transactionID]; ok {
		return height, nil
	}
	if _, ok := stagingShard.toDelete[*transactionID]; ok {
		return 0, errors.Wrapf(database.ErrNotFound, "transaction %s is staged for deletion", transactionID)
	}

	if height, ok := ts.cache.Get(*transactionID); ok {
		return height.(uint64), nil
	}

	heightBytes, err := dbContext.Get(ts.idAsKey(transactionID))
	if err != nil {
		return 0, err
	}
	height, err := serialization.DeserializeHeight(heightBytes)
	if err != nil {
		return 0, err
	}
	ts.cache.Add(*transactionID, height)
	return height, nil
}

func (ts *transactionStore) idAsKey(transactionID *externalapi.DomainHash) model.DBKey {
	return bucket.Key(transactionID.ByteSlice())
}
