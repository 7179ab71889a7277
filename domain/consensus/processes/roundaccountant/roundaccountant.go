package roundaccountant

import (
	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/consensus/utils/slots"
	"github.com/pkg/errors"
)

type roundAccountant struct {
	databaseContext      model.DBReader
	clock                *slots.Clock
	roundSnapshotHistory uint64

	delegateListBuilder model.DelegateListBuilder

	accountStore model.AccountStore
	blockStore   model.BlockStore
	roundStore   model.RoundStore
}

// New instantiates a new RoundAccountant
func New(databaseContext model.DBReader,
	clock *slots.Clock,
	roundSnapshotHistory uint64,
	delegateListBuilder model.DelegateListBuilder,
	accountStore model.AccountStore,
	blockStore model.BlockStore,
	roundStore model.RoundStore) model.RoundAccountant {

	return &roundAccountant{
		databaseContext:      databaseContext,
		clock:                clock,
		roundSnapshotHistory: roundSnapshotHistory,
		delegateListBuilder:  delegateListBuilder,
		accountStore:         accountStore,
		blockStore:           blockStore,
		roundStore:           roundStore,
	}
}

func (ra *roundAccountant) InitGenesisRound(stagingArea *model.StagingArea) error {
	delegates, err := ra.delegateListBuilder.ComputeDelegateList(stagingArea, 1)
	if err != nil {
		return err
	}
	ra.roundStore.Stage(stagingArea, &externalapi.RoundSnapshot{
		Round:     1,
		State:     externalapi.RoundStateAccumulating,
		Delegates: delegates,
	})
	return nil
}

func (ra *roundAccountant) Round(stagingArea *model.StagingArea, height uint64) (*externalapi.Round, error) {
	roundNumber := ra.clock.RoundOf(height)
	round := &externalapi.Round{
		Number:      roundNumber,
		FirstHeight: ra.clock.FirstInRound(roundNumber),
		LastHeight:  ra.clock.LastInRound(roundNumber),
		State:       externalapi.RoundStateAccumulating,
	}

	snapshot, err := ra.roundStore.RoundSnapshot(ra.databaseContext, stagingArea, roundNumber)
	if err != nil && !database.IsNotFoundError(err) {
		return nil, err
	}
	if snapshot != nil {
		round.State = snapshot.State
	}

	for height := round.FirstHeight; height <= round.LastHeight; height++ {
		if height == 1 {
			continue
		}
		block, err := ra.blockStore.BlockByHeight(ra.databaseContext, stagingArea, height)
		if database.IsNotFoundError(err) {
			break
		}
		if err != nil {
			return nil, err
		}
		round.Entries = append(round.Entries, roundEntry(block))
		round.TotalFees += block.TotalFee
	}
	return round, nil
}

func roundEntry(block *externalapi.DomainBlock) *externalapi.RoundEntry {
	return &externalapi.RoundEntry{
		Height:             block.Height,
		GeneratorPublicKey: block.GeneratorPublicKey,
		Reward:             block.Reward,
		Fee:                block.TotalFee,
	}
}

// roundEntries collects the entries of every block of round, the last one
// being lastBlock. The genesis block is not part of any distribution.
func (ra *roundAccountant) roundEntries(stagingArea *model.StagingArea, round uint64,
	lastBlock *externalapi.DomainBlock) ([]*externalapi.RoundEntry, uint64, error) {

	var entries []*externalapi.RoundEntry
	totalFees := uint64(0)
	for height := ra.clock.FirstInRound(round); height < lastBlock.Height; height++ {
		if height == 1 {
			continue
		}
		block, err := ra.blockStore.BlockByHeight(ra.databaseContext, stagingArea, height)
		if database.IsNotFoundError(err) {
			return nil, 0, errors.Wrapf(ruleerrors.ErrRoundHeightGap, "height %d of round %d is missing",
				height, round)
		}
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, roundEntry(block))
		totalFees += block.TotalFee
	}
	entries = append(entries, roundEntry(lastBlock))
	totalFees += lastBlock.TotalFee
	return entries, totalFees, nil
}

func (ra *roundAccountant) roundSnapshot(stagingArea *model.StagingArea, round uint64) (*externalapi.RoundSnapshot, error) {
	snapshot, err := ra.roundStore.RoundSnapshot(ra.databaseContext, stagingArea, round)
	if database.IsNotFoundError(err) {
		return nil, errors.Wrapf(ruleerrors.ErrMissingRoundSnapshot, "round %d has no snapshot", round)
	}
	return snapshot, err
}
