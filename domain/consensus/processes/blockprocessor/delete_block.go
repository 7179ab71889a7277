package blockprocessor

import (
	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/infrastructure/logger"
	"github.com/dposnet/dposd/infrastructure/metrics"
	"github.com/pkg/errors"
)

// DeleteLastBlock removes the chain tip, restoring the ledger and the
// round snapshots to their state before it was applied. The transactions
// of the deleted block are handed back to the transaction pool.
func (bp *blockProcessor) DeleteLastBlock(state *model.NodeState) (*externalapi.DomainBlock, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "DeleteLastBlock")
	defer onEnd()

	if !state.Loaded {
		return nil, errors.WithStack(ruleerrors.ErrNotLoaded)
	}

	stagingArea := model.NewStagingArea()
	tip, newTip, err := bp.deleteLastBlock(state, stagingArea)
	if err != nil {
		if kind, ok := ruleerrors.KindOf(err); ok && kind == ruleerrors.KindConsistency {
			log.Criticalf("Could not delete the chain tip: %+v", err)
		}
		return nil, err
	}

	err = bp.commit(stagingArea)
	if err != nil {
		return nil, err
	}
	state.LastBlock = newTip
	metrics.ObserveBlockDeleted(newTip.Height)
	log.Debugf("Deleted block %s at height %d, the tip is now %s", tip.ID, tip.Height, newTip.ID)

	bp.observersLock.RLock()
	transactionPoolUpdater := bp.transactionPoolUpdater
	bp.observersLock.RUnlock()
	if transactionPoolUpdater != nil && len(tip.Transactions) > 0 {
		state.QueueNotification(func() {
			transactionPoolUpdater.ReaddTransactions(tip.Transactions)
		})
	}
	return tip, nil
}

func (bp *blockProcessor) deleteLastBlock(state *model.NodeState,
	stagingArea *model.StagingArea) (tip *externalapi.DomainBlock, newTip *externalapi.DomainBlock, err error) {

	tip, err = bp.blockStore.Tip(bp.databaseContext, stagingArea)
	if err != nil {
		return nil, nil, err
	}
	if tip.Height == 1 {
		return nil, nil, errors.WithStack(ruleerrors.ErrCannotDeleteGenesis)
	}
	newTip, err = bp.blockStore.BlockByHeight(bp.databaseContext, stagingArea, tip.Height-1)
	if err != nil {
		return nil, nil, err
	}

	// The round income was distributed on top of the transaction effects,
	// so it is taken back first
	state.Ticking = true
	err = bp.roundAccountant.Untick(stagingArea, tip)
	state.Ticking = false
	if err != nil {
		return nil, nil, err
	}

	ops, err := bp.mutationLogStore.MutationLog(bp.databaseContext, stagingArea, tip.Height)
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, nil, errors.Wrapf(ruleerrors.ErrMissingMutationLog, "no mutation log for height %d",
				tip.Height)
		}
		return nil, nil, err
	}
	bp.accountStore.RevertOps(stagingArea, ops)

	for _, tx := range tip.Transactions {
		bp.transactionStore.Delete(stagingArea, tx.ID)
	}
	bp.mutationLogStore.Delete(stagingArea, tip.Height)
	bp.blockStore.Delete(stagingArea, tip)
	bp.blockStore.StageTip(stagingArea, newTip.Height)
	return tip, newTip, nil
}

// DeleteAfterBlock deletes chain tips until the tip is at height
func (bp *blockProcessor) DeleteAfterBlock(state *model.NodeState, height uint64) error {
	if height < 1 {
		return errors.WithStack(ruleerrors.ErrCannotDeleteGenesis)
	}
	for state.LastBlock != nil && state.LastBlock.Height > height {
		_, err := bp.DeleteLastBlock(state)
		if err != nil {
			return err
		}
	}
	return nil
}
