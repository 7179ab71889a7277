package model

import (
	"github.com/pkg/errors"
)

// StagingShard is the part of a staging area owned by a single store
type StagingShard interface {
	Commit(dbTx DBTransaction) error
}

// StagingArea holds the changes of a single ledger mutation until they are
// either committed in one database transaction or discarded. Stores read
// through it, so staged changes are visible to every later step of the same
// mutation.
type StagingArea struct {
	shards      map[string]StagingShard
	shardOrder  []string
	isCommitted bool
}

// NewStagingArea creates a new, empty staging area.
func NewStagingArea() *StagingArea {
	return &StagingArea{
		shards:      make(map[string]StagingShard),
		isCommitted: false,
	}
}

// GetOrCreateShard attempts to retrieve a shard with the given name.
// If it does not exist - a new shard is created using `createFunc`.
func (sa *StagingArea) GetOrCreateShard(shardName string, createFunc func() StagingShard) StagingShard {
	if _, ok := sa.shards[shardName]; !ok {
		sa.shards[shardName] = createFunc()
		sa.shardOrder = append(sa.shardOrder, shardName)
	}
	return sa.shards[shardName]
}

// Commit writes every shard into dbTx, in the order the shards were created.
// A staging area can be committed only once.
func (sa *StagingArea) Commit(dbTx DBTransaction) error {
	if sa.isCommitted {
		return errors.New("Attempt to call Commit on already committed stagingArea")
	}

	for _, shardName := range sa.shardOrder {
		err := sa.shards[shardName].Commit(dbTx)
		if err != nil {
			return err
		}
	}

	sa.isCommitted = true

	return nil
}
