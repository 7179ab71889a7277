package model

// DelegateListBuilder computes the ordered list of delegates allowed to forge
// in a round
type DelegateListBuilder interface {
	// DelegateList returns the authorized list of the given round, from its
	// snapshot when one exists
	DelegateList(stagingArea *StagingArea, round uint64) ([]string, error)

	// ComputeDelegateList computes the list of the given round from the
	// current vote weights and the blocks of the previous round
	ComputeDelegateList(stagingArea *StagingArea, round uint64) ([]string, error)
}
