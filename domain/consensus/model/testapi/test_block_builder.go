package testapi

import (
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

// TestBlockBuilder adds to the main BlockBuilder methods required by tests
type TestBlockBuilder interface {
	model.BlockBuilder

	// BuildBlockOnParent builds a block on top of the given parent, which
	// does not have to be the chain tip. The transactions are included as
	// they are, without being checked against the ledger.
	BuildBlockOnParent(keyPair *externalapi.KeyPair, parent *externalapi.DomainBlock, timestamp int64,
		transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)
}
