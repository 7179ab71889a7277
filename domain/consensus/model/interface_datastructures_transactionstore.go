package model

import "github.com/dposnet/dposd/domain/consensus/model/externalapi"

// TransactionStore indexes committed transaction ids by the height of the
// block that included them
type TransactionStore interface {
	Store
	Stage(stagingArea *StagingArea, transactionID *externalapi.DomainHash, height uint64)
	Delete(stagingArea *StagingArea, transactionID *externalapi.DomainHash)
	Has(dbContext DBReader, stagingArea *StagingArea, transactionID *externalapi.DomainHash) (bool, error)
	BlockHeight(dbContext DBReader, stagingArea *StagingArea, transactionID *externalapi.DomainHash) (uint64, error)
}
