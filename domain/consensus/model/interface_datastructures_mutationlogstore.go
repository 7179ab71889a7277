package model

import "github.com/dposnet/dposd/domain/consensus/model/externalapi"

// MutationLogStore keeps, per block height, the ledger ops its transactions
// applied, in application order
type MutationLogStore interface {
	Store
	Stage(stagingArea *StagingArea, height uint64, ops []*externalapi.LedgerOp)
	Delete(stagingArea *StagingArea, height uint64)
	MutationLog(dbContext DBReader, stagingArea *StagingArea, height uint64) ([]*externalapi.LedgerOp, error)
}
