package model

import "github.com/dposnet/dposd/domain/consensus/model/externalapi"

// BlockBuilder is responsible for creating blocks from the current state
type BlockBuilder interface {
	BuildBlock(keyPair *externalapi.KeyPair, timestamp int64,
		transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)
}
