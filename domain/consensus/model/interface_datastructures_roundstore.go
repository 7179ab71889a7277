package model

import "github.com/dposnet/dposd/domain/consensus/model/externalapi"

// RoundStore represents a store of round snapshots
type RoundStore interface {
	Store
	Stage(stagingArea *StagingArea, snapshot *externalapi.RoundSnapshot)
	Delete(stagingArea *StagingArea, round uint64)
	RoundSnapshot(dbContext DBReader, stagingArea *StagingArea, round uint64) (*externalapi.RoundSnapshot, error)
	HasRoundSnapshot(dbContext DBReader, stagingArea *StagingArea, round uint64) (bool, error)

	StagePruned(stagingArea *StagingArea, closedRound uint64, snapshot *externalapi.RoundSnapshot)
	DeletePruned(stagingArea *StagingArea, closedRound uint64)
	PrunedSnapshot(dbContext DBReader, stagingArea *StagingArea, closedRound uint64) (*externalapi.RoundSnapshot, error)
}
