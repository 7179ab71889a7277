package model

import "github.com/dposnet/dposd/domain/consensus/model/externalapi"

// BlockProcessor is responsible for applying blocks to the ledger and
// deleting them from it
type BlockProcessor interface {
	ApplyGenesisBlock(state *NodeState) error
	ApplyBlock(state *NodeState, block *externalapi.DomainBlock, options externalapi.ApplyOptions) error
	DeleteLastBlock(state *NodeState) (*externalapi.DomainBlock, error)
	DeleteAfterBlock(state *NodeState, height uint64) error

	RegisterBlockAppliedObserver(observer externalapi.BlockAppliedObserver)
	RegisterTransactionsSavedObserver(observer externalapi.TransactionsSavedObserver)
	SetTransactionPoolUpdater(updater externalapi.TransactionPoolUpdater)
}
