package externalapi

// ForkType identifies the way a received block conflicts with the local
// chain. The numbering is fixed by the network protocol; 4 is unassigned.
type ForkType uint8

// The fork types
const (
	ForkTypeDiscontinuity    ForkType = 1
	ForkTypeDoubleSubmission ForkType = 2
	ForkTypeWrongForgingSlot ForkType = 3
	ForkTypeCompetingBlock   ForkType = 5
)

var forkTypeStrings = map[ForkType]string{
	ForkTypeDiscontinuity:    "Discontinuity",
	ForkTypeDoubleSubmission: "DoubleSubmission",
	ForkTypeWrongForgingSlot: "WrongForgingSlot",
	ForkTypeCompetingBlock:   "CompetingBlock",
}

func (t ForkType) String() string {
	if s, ok := forkTypeStrings[t]; ok {
		return s
	}
	return "Unknown"
}

// VerificationResult is the outcome of verifying a block. Rule violations
// are reported here rather than as errors.
type VerificationResult struct {
	Verified bool
	Errors   []error
}

// NewVerificationResult returns a result that is verified iff errs is empty
func NewVerificationResult(errs ...error) *VerificationResult {
	return &VerificationResult{
		Verified: len(errs) == 0,
		Errors:   errs,
	}
}

// FirstError returns the first rule violation, or nil if the block verified
func (result *VerificationResult) FirstError() error {
	if len(result.Errors) == 0 {
		return nil
	}
	return result.Errors[0]
}
