package blockstore

import (
	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/database/serialization"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("blocks"))
var idsBucket = database.MakeBucket([]byte("block-heights"))
var tipKey = database.MakeBucket([]byte("chain-tip")).Key([]byte("height"))

// blockStore represents a store of the canonical chain
type blockStore struct {
	cache     *lru.Cache
	tipHeight *uint64
}

// New instantiates a new BlockStore
func New(dbContext model.DBReader, cacheSize int) (model.BlockStore, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	store := &blockStore{cache: cache}

	tipBytes, err := dbContext.Get(tipKey)
	if err != nil && !database.IsNotFoundError(err) {
		return nil, err
	}
	if err == nil {
		tipHeight, err := serialization.DeserializeHeight(tipBytes)
		if err != nil {
			return nil, err
		}
		store.tipHeight = &tipHeight
	}
	return store, nil
}

// Stage stages the given block at its height
func (bs *blockStore) Stage(stagingArea *model.StagingArea, block *externalapi.DomainBlock) {
	stagingShard := bs.stagingShard(stagingArea)
	delete(stagingShard.toDelete, block.Height)
	stagingShard.toAdd[block.Height] = block.Clone()
}

// Delete stages the removal of the given block
func (bs *blockStore) Delete(stagingArea *model.StagingArea, block *externalapi.DomainBlock) {
	stagingShard := bs.stagingShard(stagingArea)
	if _, ok := stagingShard.toAdd[block.Height]; ok {
		delete(stagingShard.toAdd, block.Height)
		return
	}
	stagingShard.toDelete[block.Height] = block.Clone()
}

// StageTip stages the height of the chain tip
func (bs *blockStore) StageTip(stagingArea *model.StagingArea, height uint64) {
	stagingShard := bs.stagingShard(stagingArea)
	stagingShard.newTip = &height
}

func (bs *blockStore) IsStaged(stagingArea *model.StagingArea) bool {
	return bs.stagingShard(stagingArea).isStaged()
}

// BlockByHeight gets the block at the given height
func (bs *blockStore) BlockByHeight(dbContext model.DBReader, stagingArea *model.StagingArea,
	height uint64) (*externalapi.DomainBlock, error) {

	stagingShard := bs.stagingShard(stagingArea)
	return bs.blockByHeight(dbContext, stagingShard, height)
}

func (bs *blockStore) blockByHeight(dbContext model.DBReader, stagingShard *blockStagingShard,
	height uint64) (*externalapi.DomainBlock, error) {

	if block, ok := stagingShard.toAdd[height]; ok {
		return block.Clone(), nil
	}
	if _, ok := stagingShard.toDelete[height]; ok {
		return nil, errors.Wrapf(database.ErrNotFound, "block at height %d is staged for deletion", height)
	}

	if block, ok := bs.cache.Get(height); ok {
		return block.(*externalapi.DomainBlock).Clone(), nil
	}

	blockBytes, err := dbContext.Get(bs.heightAsKey(height))
	if err != nil {
		return nil, err
	}
	block, err := serialization.DeserializeBlock(blockBytes)
	if err != nil {
		return nil, err
	}
	bs.cache.Add(height, block)
	return block.Clone(), nil
}

// HasBlockAtHeight returns whether the chain holds a block at the given height
func (bs *blockStore) HasBlockAtHeight(dbContext model.DBReader, stagingArea *model.StagingArea,
	height uint64) (bool, error) {

	stagingShard := bs.stagingShard(stagingArea)
	if _, ok := stagingShard.toAdd[height]; ok {
		return true, nil
	}
	if _, ok := stagingShard.toDelete[height]; ok {
		return false, nil
	}
	if bs.cache.Contains(height) {
		return true, nil
	}
	return dbContext.Has(bs.heightAsKey(height))
}

// Block gets the block with the given id
func (bs *blockStore) Block(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockID *externalapi.DomainHash) (*externalapi.DomainBlock, error) {

	stagingShard := bs.stagingShard(stagingArea)
	height, err := bs.height(dbContext, stagingShard, blockID)
	if err != nil {
		return nil, err
	}
	return bs.blockByHeight(dbContext, stagingShard, height)
}

// HasBlock returns whether the chain holds the block with the given id
func (bs *blockStore) HasBlock(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockID *externalapi.DomainHash) (bool, error) {

	_, err := bs.height(dbContext, bs.stagingShard(stagingArea), blockID)
	if database.IsNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (bs *blockStore) height(dbContext model.DBReader, stagingShard *blockStagingShard,
	blockID *externalapi.DomainHash) (uint64, error) {

	for height, block := range stagingShard.toAdd {
		if block.ID.Equal(blockID) {
			return height, nil
		}
	}
	for _, block := range stagingShard.toDelete {
		if block.ID.Equal(blockID) {
			return 0, errors.Wrapf(database.ErrNotFound, "block %s is staged for deletion", blockID)
		}
	}

	heightBytes, err := dbContext.Get(bs.idAsKey(blockID))
	if err != nil {
		return 0, err
	}
	return serialization.DeserializeHeight(heightBytes)
}

// Tip returns the last block of the chain
func (bs *blockStore) Tip(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainBlock, error) {
	stagingShard := bs.stagingShard(stagingArea)
	tipHeight := bs.tipHeight
	if stagingShard.newTip != nil {
		tipHeight = stagingShard.newTip
	}
	if tipHeight == nil {
		return nil, errors.Wrapf(database.ErrNotFound, "the chain has no tip")
	}
	return bs.blockByHeight(dbContext, stagingShard, *tipHeight)
}

// HasTip returns whether the chain has any block
func (bs *blockStore) HasTip(_ model.DBReader, stagingArea *model.StagingArea) (bool, error) {
	stagingShard := bs.stagingShard(stagingArea)
	return stagingShard.newTip != nil || bs.tipHeight != nil, nil
}

func (bs *blockStore) heightAsKey(height uint64) model.DBKey {
	return bucket.Key(serialization.SerializeHeight(height))
}

func (bs *blockStore) idAsKey(blockID *externalapi.DomainHash) model.DBKey {
	return idsBucket.Key(blockID.ByteSlice())
}
