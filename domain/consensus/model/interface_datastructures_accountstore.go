package model

import "github.com/dposnet/dposd/domain/consensus/model/externalapi"

// AccountStore represents a store of accounts. It is the only component that
// changes vote weights: every merged diff that changes a balance or a set of
// votes emits the matching vote weight ops for the affected delegates.
type AccountStore interface {
	Store
	Account(dbContext DBReader, stagingArea *StagingArea, address string) (*externalapi.Account, error)
	AccountsByAddress(dbContext DBReader, stagingArea *StagingArea, addresses []string) (map[string]*externalapi.Account, error)
	HasAccount(dbContext DBReader, stagingArea *StagingArea, address string) (bool, error)
	Accounts(dbContext DBReader, stagingArea *StagingArea) ([]*externalapi.Account, error)
	Delegates(dbContext DBReader, stagingArea *StagingArea) ([]*externalapi.Account, error)
	Merge(dbContext DBReader, stagingArea *StagingArea, address string,
		diff *externalapi.AccountDiff) ([]*externalapi.LedgerOp, error)
	RevertOps(stagingArea *StagingArea, ops []*externalapi.LedgerOp)
	Commitment(dbContext DBReader, stagingArea *StagingArea) (*externalapi.DomainHash, error)
}
