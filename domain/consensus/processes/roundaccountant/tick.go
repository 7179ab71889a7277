package roundaccountant

import (
	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
	"github.com/dposnet/dposd/infrastructure/logger"
	"github.com/pkg/errors"
)

func (ra *roundAccountant) Tick(stagingArea *model.StagingArea, block *externalapi.DomainBlock) ([]*externalapi.LedgerOp, error) {
	if !ra.clock.IsLastInRound(block.Height) {
		return nil, nil
	}
	round := ra.clock.RoundOf(block.Height)
	onEnd := logger.LogAndMeasureExecutionTime(log, "roundAccountant.Tick")
	defer onEnd()

	snapshot, err := ra.roundSnapshot(stagingArea, round)
	if err != nil {
		return nil, err
	}
	snapshot.State = externalapi.RoundStateClosing
	entries, totalFees, err := ra.roundEntries(stagingArea, round, block)
	if err != nil {
		return nil, err
	}

	snapshot.State = externalapi.RoundStateDistributing
	snapshot.Distribution = Distribute(totalFees, entries)
	snapshot.Missed = missedDelegates(snapshot.Delegates, snapshot.Distribution)

	var ops []*externalapi.LedgerOp
	for _, forger := range snapshot.Distribution {
		forgerOps, err := ra.merge(stagingArea, forger.PublicKey, &externalapi.AccountDiff{
			Balance:        int64(forger.Fee + forger.Reward),
			Fees:           int64(forger.Fee),
			Rewards:        int64(forger.Reward),
			ProducedBlocks: int64(forger.BlocksProduced),
		})
		if err != nil {
			return nil, err
		}
		ops = append(ops, forgerOps...)
	}
	for _, publicKey := range snapshot.Missed {
		missedOps, err := ra.merge(stagingArea, publicKey, &externalapi.AccountDiff{MissedBlocks: 1})
		if err != nil {
			return nil, err
		}
		ops = append(ops, missedOps...)
	}

	snapshot.State = externalapi.RoundStateClosed
	ra.roundStore.Stage(stagingArea, snapshot)

	nextDelegates, err := ra.delegateListBuilder.ComputeDelegateList(stagingArea, round+1)
	if err != nil {
		return nil, err
	}
	ra.roundStore.Stage(stagingArea, &externalapi.RoundSnapshot{
		Round:     round + 1,
		State:     externalapi.RoundStateAccumulating,
		Delegates: nextDelegates,
	})

	err = ra.pruneSnapshots(stagingArea, round)
	if err != nil {
		return nil, err
	}

	log.Debugf("Closed round %d: distributed %d in fees between %d forgers, %d delegates missed their slot",
		round, totalFees, len(snapshot.Distribution), len(snapshot.Missed))
	return ops, nil
}

func (ra *roundAccountant) Untick(stagingArea *model.StagingArea, block *externalapi.DomainBlock) error {
	if !ra.clock.IsLastInRound(block.Height) {
		return nil
	}
	round := ra.clock.RoundOf(block.Height)
	onEnd := logger.LogAndMeasureExecutionTime(log, "roundAccountant.Untick")
	defer onEnd()

	snapshot, err := ra.roundSnapshot(stagingArea, round)
	if err != nil {
		return err
	}
	if snapshot.State != externalapi.RoundStateClosed {
		return errors.Wrapf(ruleerrors.ErrMissingRoundSnapshot, "round %d is %s, expected it to be closed",
			round, snapshot.State)
	}

	for i := len(snapshot.Missed) - 1; i >= 0; i-- {
		_, err := ra.merge(stagingArea, snapshot.Missed[i], &externalapi.AccountDiff{MissedBlocks: -1})
		if err != nil {
			return err
		}
	}
	for i := len(snapshot.Distribution) - 1; i >= 0; i-- {
		forger := snapshot.Distribution[i]
		_, err := ra.merge(stagingArea, forger.PublicKey, &externalapi.AccountDiff{
			Balance:        -int64(forger.Fee + forger.Reward),
			Fees:           -int64(forger.Fee),
			Rewards:        -int64(forger.Reward),
			ProducedBlocks: -int64(forger.BlocksProduced),
		})
		if err != nil {
			return err
		}
	}

	ra.roundStore.Stage(stagingArea, &externalapi.RoundSnapshot{
		Round:     round,
		State:     externalapi.RoundStateAccumulating,
		Delegates: snapshot.Delegates,
	})
	ra.roundStore.Delete(stagingArea, round+1)

	err = ra.restorePrunedSnapshot(stagingArea, round)
	if err != nil {
		return err
	}

	log.Debugf("Reopened round %d", round)
	return nil
}

// pruneSnapshots drops the snapshot that fell out of the history when
// closedRound was closed. The dropped snapshot is kept aside under
// closedRound so that reopening closedRound brings it back.
func (ra *roundAccountant) pruneSnapshots(stagingArea *model.StagingArea, closedRound uint64) error {
	if closedRound+1 <= ra.roundSnapshotHistory {
		return nil
	}
	prunedRound := closedRound + 1 - ra.roundSnapshotHistory
	snapshot, err := ra.roundStore.RoundSnapshot(ra.databaseContext, stagingArea, prunedRound)
	if database.IsNotFoundError(err) {
		return nil
	}
	if err != nil {
		return err
	}
	ra.roundStore.StagePruned(stagingArea, closedRound, snapshot)
	ra.roundStore.Delete(stagingArea, prunedRound)
	return nil
}

func (ra *roundAccountant) restorePrunedSnapshot(stagingArea *model.StagingArea, reopenedRound uint64) error {
	snapshot, err := ra.roundStore.PrunedSnapshot(ra.databaseContext, stagingArea, reopenedRound)
	if database.IsNotFoundError(err) {
		return nil
	}
	if err != nil {
		return err
	}
	ra.roundStore.Stage(stagingArea, snapshot)
	ra.roundStore.DeletePruned(stagingArea, reopenedRound)
	log.Debugf("Restored the snapshot of round %d", snapshot.Round)
	return nil
}

func (ra *roundAccountant) merge(stagingArea *model.StagingArea, publicKey string,
	diff *externalapi.AccountDiff) ([]*externalapi.LedgerOp, error) {

	address, err := consensushashing.AddressFromPublicKey(publicKey)
	if err != nil {
		return nil, err
	}
	return ra.accountStore.Merge(ra.databaseContext, stagingArea, address, diff)
}

// missedDelegates returns the delegates of list that forged no block, in
// list order
func missedDelegates(list []string, distribution []*externalapi.ForgerDistribution) []string {
	forged := make(map[string]struct{}, len(distribution))
	for _, forger := range distribution {
		forged[forger.PublicKey] = struct{}{}
	}
	var missed []string
	for _, publicKey := range list {
		if _, ok := forged[publicKey]; !ok {
			missed = append(missed, publicKey)
		}
	}
	return missed
}
