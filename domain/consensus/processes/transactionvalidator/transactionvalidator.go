package transactionvalidator

import (
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/dposconfig"
)

// transactionValidator exposes a set of validation classes, after which
// it's possible to determine whether either a transaction is valid
type transactionValidator struct {
	params          *dposconfig.Params
	databaseContext model.DBReader
	crypto          model.CryptoProvider

	accountStore model.AccountStore
}

// New instantiates a new TransactionValidator
func New(params *dposconfig.Params,
	databaseContext model.DBReader,
	crypto model.CryptoProvider,
	accountStore model.AccountStore) model.TransactionValidator {

	return &transactionValidator{
		params:          params,
		databaseContext: databaseContext,
		crypto:          crypto,
		accountStore:    accountStore,
	}
}
