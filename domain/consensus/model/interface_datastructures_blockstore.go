package model

import "github.com/dposnet/dposd/domain/consensus/model/externalapi"

// BlockStore represents a store of the canonical chain, indexed by height
// and by block id, together with its tip
type BlockStore interface {
	Store
	Stage(stagingArea *StagingArea, block *externalapi.DomainBlock)
	Delete(stagingArea *StagingArea, block *externalapi.DomainBlock)
	StageTip(stagingArea *StagingArea, height uint64)
	BlockByHeight(dbContext DBReader, stagingArea *StagingArea, height uint64) (*externalapi.DomainBlock, error)
	HasBlockAtHeight(dbContext DBReader, stagingArea *StagingArea, height uint64) (bool, error)
	Block(dbContext DBReader, stagingArea *StagingArea, blockID *externalapi.DomainHash) (*externalapi.DomainBlock, error)
	HasBlock(dbContext DBReader, stagingArea *StagingArea, blockID *externalapi.DomainHash) (bool, error)
	Tip(dbContext DBReader, stagingArea *StagingArea) (*externalapi.DomainBlock, error)
	HasTip(dbContext DBReader, stagingArea *StagingArea) (bool, error)
}
