package delegatelistbuilder

import (
	"encoding/binary"
	"encoding/hex"
	"sort"

	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/consensus/utils/hashes"
	"github.com/dposnet/dposd/domain/consensus/utils/slots"
	"github.com/pkg/errors"
)

const (
	genesisRoundSeed = "dposd/round-seed/genesis"

	// swapsPerSeed is the number of swaps drawn from a single seed. Every
	// swap consumes swapBytes bytes of it.
	swapsPerSeed = 5
	swapBytes    = 6
)

type delegateListBuilder struct {
	databaseContext model.DBReader
	clock           *slots.Clock

	accountStore model.AccountStore
	blockStore   model.BlockStore
	roundStore   model.RoundStore
}

// New instantiates a new DelegateListBuilder
func New(databaseContext model.DBReader,
	clock *slots.Clock,
	accountStore model.AccountStore,
	blockStore model.BlockStore,
	roundStore model.RoundStore) model.DelegateListBuilder {

	return &delegateListBuilder{
		databaseContext: databaseContext,
		clock:           clock,
		accountStore:    accountStore,
		blockStore:      blockStore,
		roundStore:      roundStore,
	}
}

func (dlb *delegateListBuilder) DelegateList(stagingArea *model.StagingArea, round uint64) ([]string, error) {
	snapshot, err := dlb.roundStore.RoundSnapshot(dlb.databaseContext, stagingArea, round)
	if err == nil {
		return snapshot.Delegates, nil
	}
	if !database.IsNotFoundError(err) {
		return nil, err
	}
	return dlb.ComputeDelegateList(stagingArea, round)
}

func (dlb *delegateListBuilder) ComputeDelegateList(stagingArea *model.StagingArea, round uint64) ([]string, error) {
	seed, err := dlb.roundSeed(stagingArea, round)
	if err != nil {
		return nil, err
	}

	delegates, err := dlb.accountStore.Delegates(dlb.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	activeDelegates := int(dlb.clock.ActiveDelegates())
	if len(delegates) < activeDelegates {
		return nil, errors.Wrapf(ruleerrors.ErrNotEnoughDelegates, "round %d needs %d delegates, "+
			"only %d are registered", round, activeDelegates, len(delegates))
	}

	sortByVoteWeight(delegates)
	list := make([]string, activeDelegates)
	for i := range list {
		list[i] = delegates[i].PublicKey
	}
	Shuffle(list, seed)
	return list, nil
}

// sortByVoteWeight sorts delegates by vote weight, heaviest first. Equal
// weights are ordered by public key.
func sortByVoteWeight(delegates []*externalapi.Account) {
	sort.Slice(delegates, func(i, j int) bool {
		if delegates[i].VoteWeight != delegates[j].VoteWeight {
			return delegates[i].VoteWeight > delegates[j].VoteWeight
		}
		return delegates[i].PublicKey < delegates[j].PublicKey
	})
}

// roundSeed returns the seed of the given round. Every round but the first
// is seeded by the generators of the round before it.
func (dlb *delegateListBuilder) roundSeed(stagingArea *model.StagingArea, round uint64) (*externalapi.DomainHash, error) {
	writer := hashes.NewRoundSeedWriter()
	if round <= 1 {
		writer.InfallibleWrite([]byte(genesisRoundSeed))
		return writer.Finalize(), nil
	}

	previousRound := round - 1
	for height := dlb.clock.FirstInRound(previousRound); height <= dlb.clock.LastInRound(previousRound); height++ {
		block, err := dlb.blockStore.BlockByHeight(dlb.databaseContext, stagingArea, height)
		if database.IsNotFoundError(err) {
			return nil, errors.Wrapf(ruleerrors.ErrRoundHeightGap, "height %d of round %d is missing",
				height, previousRound)
		}
		if err != nil {
			return nil, err
		}
		generatorPublicKey, err := hex.DecodeString(block.GeneratorPublicKey)
		if err != nil {
			return nil, errors.Wrapf(err, "block %s has a malformed generator public key", block.ID)
		}
		writer.InfallibleWrite(generatorPublicKey)
	}
	return writer.Finalize(), nil
}

// Shuffle deterministically permutes list with a Fisher-Yates shuffle driven
// by seed. The seed is rehashed before every swapsPerSeed swaps.
func Shuffle(list []string, seed *externalapi.DomainHash) {
	currentSeed := seed
	swapIndex := uint64(0)
	for i := len(list) - 1; i > 0; i-- {
		slot := swapIndex % swapsPerSeed
		if slot == 0 {
			currentSeed = reseed(currentSeed, swapIndex)
		}

		seedBytes := currentSeed.ByteSlice()
		var valueBytes [8]byte
		copy(valueBytes[8-swapBytes:], seedBytes[slot*swapBytes:(slot+1)*swapBytes])
		value := binary.BigEndian.Uint64(valueBytes[:])

		j := value % uint64(i+1)
		list[i], list[j] = list[j], list[i]
		swapIndex++
	}
}

func reseed(seed *externalapi.DomainHash, swapIndex uint64) *externalapi.DomainHash {
	writer := hashes.NewRoundSeedWriter()
	writer.InfallibleWrite(seed.ByteSlice())
	var swapIndexBytes [8]byte
	binary.BigEndian.PutUint64(swapIndexBytes[:], swapIndex)
	writer.InfallibleWrite(swapIndexBytes[:])
	return writer.Finalize()
}
