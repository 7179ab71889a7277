package blockprocessor

import (
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/infrastructure/logger"
	"github.com/dposnet/dposd/infrastructure/metrics"
	"github.com/pkg/errors"
)

// ApplyGenesisBlock loads the chain tip into state. On an empty database
// the genesis block of the network is applied first.
func (bp *blockProcessor) ApplyGenesisBlock(state *model.NodeState) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ApplyGenesisBlock")
	defer onEnd()

	stagingArea := model.NewStagingArea()
	hasTip, err := bp.blockStore.HasTip(bp.databaseContext, stagingArea)
	if err != nil {
		return err
	}
	if hasTip {
		return bp.loadChain(state, stagingArea)
	}

	genesis := bp.params.GenesisBlock
	var ops []*externalapi.LedgerOp
	for _, tx := range genesis.Transactions {
		txOps, err := bp.transactionApplier.ApplyGenesisTransaction(stagingArea, tx)
		if err != nil {
			return errors.Wrapf(err, "genesis transaction %s", tx.ID)
		}
		ops = append(ops, txOps...)
		bp.transactionStore.Stage(stagingArea, tx.ID, genesis.Height)
	}
	bp.blockStore.Stage(stagingArea, genesis)
	bp.mutationLogStore.Stage(stagingArea, genesis.Height, ops)
	bp.blockStore.StageTip(stagingArea, genesis.Height)

	err = bp.roundAccountant.InitGenesisRound(stagingArea)
	if err != nil {
		return err
	}
	err = bp.commit(stagingArea)
	if err != nil {
		return err
	}

	state.LastBlock = genesis
	state.Loaded = true
	metrics.SetChainHeight(genesis.Height)
	log.Infof("Applied genesis block %s with %d transactions", genesis.ID, len(genesis.Transactions))
	return nil
}

func (bp *blockProcessor) loadChain(state *model.NodeState, stagingArea *model.StagingArea) error {
	genesis, err := bp.blockStore.BlockByHeight(bp.databaseContext, stagingArea, 1)
	if err != nil {
		return err
	}
	if !genesis.ID.Equal(bp.params.GenesisBlock.ID) {
		return errors.Wrapf(ruleerrors.ErrGenesisMismatch, "the database holds genesis block %s, "+
			"the network's genesis block is %s", genesis.ID, bp.params.GenesisBlock.ID)
	}
	tip, err := bp.blockStore.Tip(bp.databaseContext, stagingArea)
	if err != nil {
		return err
	}

	state.LastBlock = tip
	state.Loaded = true
	metrics.SetChainHeight(tip.Height)
	log.Infof("Loaded the chain with tip %s at height %d", tip.ID, tip.Height)
	return nil
}
