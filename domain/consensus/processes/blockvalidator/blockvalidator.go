package blockvalidator

import (
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/utils/slots"
	"github.com/dposnet/dposd/domain/dposconfig"
)

// blockValidator exposes a set of validation classes, after which
// it's possible to determine whether either a block is valid
type blockValidator struct {
	params          *dposconfig.Params
	databaseContext model.DBReader
	crypto          model.CryptoProvider
	slotClock       *slots.Clock
	wallClock       model.Clock

	transactionValidator model.TransactionValidator
	delegateListBuilder  model.DelegateListBuilder

	blockStore       model.BlockStore
	transactionStore model.TransactionStore
}

// New instantiates a new BlockValidator
func New(params *dposconfig.Params,
	databaseContext model.DBReader,
	crypto model.CryptoProvider,
	slotClock *slots.Clock,
	wallClock model.Clock,

	transactionValidator model.TransactionValidator,
	delegateListBuilder model.DelegateListBuilder,

	blockStore model.BlockStore,
	transactionStore model.TransactionStore) model.BlockValidator {

	return &blockValidator{
		params:          params,
		databaseContext: databaseContext,
		crypto:          crypto,
		slotClock:       slotClock,
		wallClock:       wallClock,

		transactionValidator: transactionValidator,
		delegateListBuilder:  delegateListBuilder,

		blockStore:       blockStore,
		transactionStore: transactionStore,
	}
}
