package blockbuilder

import (
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
	"github.com/dposnet/dposd/domain/consensus/utils/signing"
	"github.com/dposnet/dposd/domain/dposconfig"
	"github.com/dposnet/dposd/infrastructure/logger"
)

type blockBuilder struct {
	params          *dposconfig.Params
	databaseContext model.DBReader
	crypto          model.CryptoProvider

	transactionValidator model.TransactionValidator
	transactionApplier   model.TransactionApplier

	blockStore       model.BlockStore
	transactionStore model.TransactionStore
}

// New instantiates a new BlockBuilder
func New(
	params *dposconfig.Params,
	databaseContext model.DBReader,
	crypto model.CryptoProvider,

	transactionValidator model.TransactionValidator,
	transactionApplier model.TransactionApplier,

	blockStore model.BlockStore,
	transactionStore model.TransactionStore,
) model.BlockBuilder {

	return &blockBuilder{
		params:          params,
		databaseContext: databaseContext,
		crypto:          crypto,

		transactionValidator: transactionValidator,
		transactionApplier:   transactionApplier,

		blockStore:       blockStore,
		transactionStore: transactionStore,
	}
}

// BuildBlock builds and signs a block on top of the current chain tip with
// the given timestamp. Candidate transactions that can not be applied in
// their order are left out.
func (bb *blockBuilder) BuildBlock(keyPair *externalapi.KeyPair, timestamp int64,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "BuildBlock")
	defer onEnd()

	stagingArea := model.NewStagingArea()
	tip, err := bb.blockStore.Tip(bb.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	included, err := bb.selectTransactions(stagingArea, transactions)
	if err != nil {
		return nil, err
	}
	return bb.buildBlock(keyPair, tip, timestamp, included)
}

// selectTransactions applies the candidates in order to the throw-away
// stagingArea and returns the ones that were applied
func (bb *blockBuilder) selectTransactions(stagingArea *model.StagingArea,
	candidates []*externalapi.DomainTransaction) ([]*externalapi.DomainTransaction, error) {

	selected := make([]*externalapi.DomainTransaction, 0, len(candidates))
	seen := make(map[externalapi.DomainHash]struct{}, len(candidates))
	payloadLength := uint32(0)
	for _, tx := range candidates {
		if uint32(len(selected)) == bb.params.MaxTransactionsPerBlock {
			break
		}
		txLength := uint32(len(consensushashing.TransactionBytes(tx)))
		if payloadLength+txLength > bb.params.MaxPayloadLength {
			log.Debugf("Transaction %s does not fit in the block payload", tx.ID)
			continue
		}

		isValid, err := bb.tryApply(stagingArea, tx, seen)
		if err != nil {
			return nil, err
		}
		if !isValid {
			continue
		}
		seen[*tx.ID] = struct{}{}
		payloadLength += txLength
		selected = append(selected, tx)
	}
	return selected, nil
}

func (bb *blockBuilder) tryApply(stagingArea *model.StagingArea, tx *externalapi.DomainTransaction,
	seen map[externalapi.DomainHash]struct{}) (bool, error) {

	err := bb.transactionValidator.ValidateTransactionInIsolation(tx)
	if err != nil {
		return false, skipRuleError(tx, err)
	}
	if _, ok := seen[*tx.ID]; ok {
		log.Debugf("Transaction %s appears more than once among the candidates", tx.ID)
		return false, nil
	}
	isConfirmed, err := bb.transactionStore.Has(bb.databaseContext, stagingArea, tx.ID)
	if err != nil {
		return false, err
	}
	if isConfirmed {
		log.Debugf("Transaction %s is already confirmed", tx.ID)
		return false, nil
	}
	err = bb.transactionValidator.ValidateTransactionInContext(stagingArea, tx)
	if err != nil {
		return false, skipRuleError(tx, err)
	}
	_, err = bb.transactionApplier.ApplyTransaction(stagingArea, tx)
	if err != nil {
		return false, skipRuleError(tx, err)
	}
	return true, nil
}

// skipRuleError swallows rule violations of a candidate transaction and
// returns any other error
func skipRuleError(tx *externalapi.DomainTransaction, err error) error {
	kind, ok := ruleerrors.KindOf(err)
	if !ok || kind == ruleerrors.KindConsistency {
		return err
	}
	log.Debugf("Leaving transaction %s out of the block: %s", tx.ID, err)
	return nil
}

func (bb *blockBuilder) buildBlock(keyPair *externalapi.KeyPair, parent *externalapi.DomainBlock, timestamp int64,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	totalAmount := uint64(0)
	totalFee := uint64(0)
	for _, tx := range transactions {
		totalAmount += tx.Amount
		totalFee += tx.Fee
	}

	height := parent.Height + 1
	block := &externalapi.DomainBlock{
		Version:              bb.params.BlockVersion,
		Height:               height,
		PreviousBlockID:      parent.ID,
		Timestamp:            timestamp,
		NumberOfTransactions: uint32(len(transactions)),
		PayloadLength:        consensushashing.PayloadLength(transactions),
		PayloadHash:          consensushashing.PayloadHash(transactions),
		TotalAmount:          totalAmount,
		TotalFee:             totalFee,
		Reward:               bb.params.Reward(height),
		Transactions:         transactions,
	}
	err := signing.SignBlock(bb.crypto, block, keyPair)
	if err != nil {
		return nil, err
	}
	return block, nil
}
