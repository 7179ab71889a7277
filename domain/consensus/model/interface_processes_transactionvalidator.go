package model

import "github.com/dposnet/dposd/domain/consensus/model/externalapi"

// TransactionValidator exposes a set of validation classes, after which
// it's possible to determine whether a transaction is valid
type TransactionValidator interface {
	ValidateTransactionInIsolation(transaction *externalapi.DomainTransaction) error
	ValidateTransactionInContext(stagingArea *StagingArea, transaction *externalapi.DomainTransaction) error
}
