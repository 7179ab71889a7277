package model

import "github.com/dposnet/dposd/domain/consensus/model/externalapi"

// BlockValidator exposes a set of validation classes, after which
// it's possible to determine whether a block is valid
type BlockValidator interface {
	// VerifyReceipt runs the checks that need no chain state
	VerifyReceipt(block *externalapi.DomainBlock) *externalapi.VerificationResult

	// VerifyBlock runs every check against the staged chain state. It
	// never mutates state, and only returns an error on storage failures.
	VerifyBlock(stagingArea *StagingArea, block *externalapi.DomainBlock) (*externalapi.VerificationResult, error)
}
