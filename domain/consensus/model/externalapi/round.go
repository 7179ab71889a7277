package externalapi

// RoundState is the state of a round in the accounting state machine
type RoundState uint8

// The round states. A round accumulates blocks until its last height is
// applied, at which point it closes, distributes and becomes closed.
const (
	RoundStateAccumulating RoundState = iota
	RoundStateClosing
	RoundStateDistributing
	RoundStateClosed
)

var roundStateStrings = map[RoundState]string{
	RoundStateAccumulating: "ACCUMULATING",
	RoundStateClosing:      "CLOSING",
	RoundStateDistributing: "DISTRIBUTING",
	RoundStateClosed:       "CLOSED",
}

func (s RoundState) String() string {
	return roundStateStrings[s]
}

// RoundEntry is the contribution of a single produced block to its round
type RoundEntry struct {
	Height             uint64
	GeneratorPublicKey string
	Reward             uint64
	Fee                uint64
}

// Round is the aggregate of the blocks in [FirstHeight, LastHeight]
type Round struct {
	Number      uint64
	FirstHeight uint64
	LastHeight  uint64
	State       RoundState
	TotalFees   uint64
	Entries     []*RoundEntry
}

// ForgerDistribution is what a single delegate received when a round closed
type ForgerDistribution struct {
	PublicKey      string
	Fee            uint64
	Reward         uint64
	BlocksProduced uint64
}

// RoundSnapshot is the persisted record of a round: the delegate list that
// was authorized to forge it and, once closed, how its income was
// distributed.
type RoundSnapshot struct {
	Round        uint64
	State        RoundState
	Delegates    []string
	Distribution []*ForgerDistribution
	Missed       []string
}

// Clone returns a deep copy of the snapshot
func (snapshot *RoundSnapshot) Clone() *RoundSnapshot {
	if snapshot == nil {
		return nil
	}
	var distribution []*ForgerDistribution
	if snapshot.Distribution != nil {
		distribution = make([]*ForgerDistribution, len(snapshot.Distribution))
		for i, forger := range snapshot.Distribution {
			forgerClone := *forger
			distribution[i] = &forgerClone
		}
	}
	return &RoundSnapshot{
		Round:        snapshot.Round,
		State:        snapshot.State,
		Delegates:    cloneStrings(snapshot.Delegates),
		Distribution: distribution,
		Missed:       cloneStrings(snapshot.Missed),
	}
}

// Equal returns whether snapshot equals to other
func (snapshot *RoundSnapshot) Equal(other *RoundSnapshot) bool {
	if snapshot == nil || other == nil {
		return snapshot == other
	}
	if snapshot.Round != other.Round || snapshot.State != other.State ||
		!stringsEqual(snapshot.Delegates, other.Delegates) ||
		!stringsEqual(snapshot.Missed, other.Missed) ||
		len(snapshot.Distribution) != len(other.Distribution) {
		return false
	}
	for i, forger := range snapshot.Distribution {
		if *forger != *other.Distribution[i] {
			return false
		}
	}
	return true
}
