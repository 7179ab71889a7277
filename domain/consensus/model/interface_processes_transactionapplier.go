package model

import "github.com/dposnet/dposd/domain/consensus/model/externalapi"

// TransactionApplier turns transactions into account mutations
type TransactionApplier interface {
	ApplyTransaction(stagingArea *StagingArea, transaction *externalapi.DomainTransaction) ([]*externalapi.LedgerOp, error)
	ApplyGenesisTransaction(stagingArea *StagingArea, transaction *externalapi.DomainTransaction) ([]*externalapi.LedgerOp, error)
}
