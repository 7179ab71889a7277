package model

import "github.com/dposnet/dposd/domain/consensus/model/externalapi"

// RoundAccountant closes rounds as blocks are applied and reopens them as
// blocks are deleted
type RoundAccountant interface {
	// Tick is called with every newly staged non-genesis block. When the
	// block completes its round, the round income is distributed and the
	// next round's delegate list is stored.
	Tick(stagingArea *StagingArea, block *externalapi.DomainBlock) ([]*externalapi.LedgerOp, error)

	// Untick reverses Tick for the chain tip that is about to be deleted
	Untick(stagingArea *StagingArea, block *externalapi.DomainBlock) error

	// Round returns the aggregate of the round containing height
	Round(stagingArea *StagingArea, height uint64) (*externalapi.Round, error)

	// InitGenesisRound stores the delegate list of the first round
	InitGenesisRound(stagingArea *StagingArea) error
}
