package roundaccountant

import (
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

// Distribute splits totalFees evenly between the blocks of a round and adds
// every block's reward to its generator. The remainder of the fee division
// goes to the generator of the last block. The result has one entry per
// generator, in order of first appearance.
func Distribute(totalFees uint64, entries []*externalapi.RoundEntry) []*externalapi.ForgerDistribution {
	if len(entries) == 0 {
		return nil
	}
	blockCount := uint64(len(entries))
	flooredFee := totalFees / blockCount
	remainder := totalFees - flooredFee*blockCount

	var distribution []*externalapi.ForgerDistribution
	byPublicKey := make(map[string]*externalapi.ForgerDistribution)
	for i, entry := range entries {
		forger, ok := byPublicKey[entry.GeneratorPublicKey]
		if !ok {
			forger = &externalapi.ForgerDistribution{PublicKey: entry.GeneratorPublicKey}
			byPublicKey[entry.GeneratorPublicKey] = forger
			distribution = append(distribution, forger)
		}
		forger.Fee += flooredFee
		forger.Reward += entry.Reward
		forger.BlocksProduced++
		if i == len(entries)-1 {
			forger.Fee += remainder
		}
	}
	return distribution
}
