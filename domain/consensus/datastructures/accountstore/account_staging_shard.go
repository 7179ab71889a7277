package accountstore

import (
	"github.com/dposnet/dposd/domain/consensus/database/serialization"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

type accountStagingShard struct {
	store    *accountStore
	toAdd    map[string]*externalapi.Account
	toDelete map[string]struct{}
}

func (as *accountStore) stagingShard(stagingArea *model.StagingArea) *accountStagingShard {
	return stagingArea.GetOrCreateShard("AccountStore", func() model.StagingShard {
		return &accountStagingShard{
			store:    as,
			toAdd:    make(map[string]*externalapi.Account),
			toDelete: make(map[string]struct{}),
		}
	}).(*accountStagingShard)
}

func (ass *accountStagingShard) Commit(dbTx model.DBTransaction) error {
	if !ass.isStaged() {
		return nil
	}

	// The commitment is computed against the transaction snapshot, which
	// still holds the accounts as they were before this shard.
	commitment, err := ass.store.stagedMultiset(dbTx, ass)
	if err != nil {
		return err
	}
	err = dbTx.Put(commitmentKey, commitment.Serialize())
	if err != nil {
		return err
	}

	for address, account := range ass.toAdd {
		err := dbTx.Put(ass.store.addressAsKey(address), serialization.SerializeAccount(account))
		if err != nil {
			return err
		}
		if account.IsDelegate {
			err = dbTx.Put(ass.store.delegateKey(address), []byte{})
		} else {
			err = dbTx.Delete(ass.store.delegateKey(address))
		}
		if err != nil {
			return err
		}
		ass.store.cache.Add(address, account)
	}

	for address := range ass.toDelete {
		err := dbTx.Delete(ass.store.addressAsKey(address))
		if err != nil {
			return err
		}
		err = dbTx.Delete(ass.store.delegateKey(address))
		if err != nil {
			return err
		}
		ass.store.cache.Remove(address)
	}

	ass.store.commitment = commitment
	return nil
}

func (ass *accountStagingShard) isStaged() bool {
	return len(ass.toAdd) != 0 || len(ass.toDelete) != 0
}
