package accountstore

import (
	"sort"

	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/database/serialization"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/utils/multiset"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("accounts"))
var delegatesBucket = database.MakeBucket([]byte("delegates"))
var commitmentKey = database.MakeBucket([]byte("account-commitment")).Key([]byte("multiset"))

// accountStore represents a store of accounts
type accountStore struct {
	cache      *lru.Cache
	commitment model.Multiset
}

// New instantiates a new AccountStore
func New(dbContext model.DBReader, cacheSize int) (model.AccountStore, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	store := &accountStore{cache: cache}

	err = store.initializeCommitment(dbContext)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func (as *accountStore) initializeCommitment(dbContext model.DBReader) error {
	commitmentBytes, err := dbContext.Get(commitmentKey)
	if database.IsNotFoundError(err) {
		as.commitment = multiset.New()
		return nil
	}
	if err != nil {
		return err
	}
	as.commitment, err = multiset.FromBytes(commitmentBytes)
	return err
}

func (as *accountStore) IsStaged(stagingArea *model.StagingArea) bool {
	return as.stagingShard(stagingArea).isStaged()
}

// Account gets the account of the given address
func (as *accountStore) Account(dbContext model.DBReader, stagingArea *model.StagingArea,
	address string) (*externalapi.Account, error) {

	stagingShard := as.stagingShard(stagingArea)
	return as.account(dbContext, stagingShard, address)
}

func (as *accountStore) account(dbContext model.DBReader, stagingShard *accountStagingShard,
	address string) (*externalapi.Account, error) {

	if _, ok := stagingShard.toDelete[address]; ok {
		return nil, errors.Wrapf(database.ErrNotFound, "account %s is staged for deletion", address)
	}
	if account, ok := stagingShard.toAdd[address]; ok {
		return account.Clone(), nil
	}
	return as.committedAccount(dbContext, address)
}

func (as *accountStore) committedAccount(dbContext model.DBReader, address string) (*externalapi.Account, error) {
	if account, ok := as.cache.Get(address); ok {
		return account.(*externalapi.Account).Clone(), nil
	}

	accountBytes, err := dbContext.Get(as.addressAsKey(address))
	if err != nil {
		return nil, err
	}
	account, err := serialization.DeserializeAccount(accountBytes)
	if err != nil {
		return nil, err
	}
	as.cache.Add(address, account)
	return account.Clone(), nil
}

// AccountsByAddress gets the accounts of the given addresses in one pass.
// Addresses without an account are left out of the result.
func (as *accountStore) AccountsByAddress(dbContext model.DBReader, stagingArea *model.StagingArea,
	addresses []string) (map[string]*externalapi.Account, error) {

	stagingShard := as.stagingShard(stagingArea)
	accounts := make(map[string]*externalapi.Account, len(addresses))
	for _, address := range addresses {
		if _, ok := accounts[address]; ok {
			continue
		}
		account, err := as.account(dbContext, stagingShard, address)
		if database.IsNotFoundError(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		accounts[address] = account
	}
	return accounts, nil
}

// HasAccount returns whether an account exists for the given address
func (as *accountStore) HasAccount(dbContext model.DBReader, stagingArea *model.StagingArea,
	address string) (bool, error) {

	stagingShard := as.stagingShard(stagingArea)
	if _, ok := stagingShard.toDelete[address]; ok {
		return false, nil
	}
	if _, ok := stagingShard.toAdd[address]; ok {
		return true, nil
	}
	if as.cache.Contains(address) {
		return true, nil
	}
	return dbContext.Has(as.addressAsKey(address))
}

// Accounts returns every account, sorted by address
func (as *accountStore) Accounts(dbContext model.DBReader, stagingArea *model.StagingArea) ([]*externalapi.Account, error) {
	return as.accountsInBucket(dbContext, stagingArea, bucket, func(*externalapi.Account) bool { return true })
}

// Delegates returns every account registered as a delegate, sorted by address
func (as *accountStore) Delegates(dbContext model.DBReader, stagingArea *model.StagingArea) ([]*externalapi.Account, error) {
	return as.accountsInBucket(dbContext, stagingArea, delegatesBucket, func(account *externalapi.Account) bool {
		return account.IsDelegate
	})
}

func (as *accountStore) accountsInBucket(dbContext model.DBReader, stagingArea *model.StagingArea,
	indexBucket model.DBBucket, filter func(*externalapi.Account) bool) ([]*externalapi.Account, error) {

	stagingShard := as.stagingShard(stagingArea)

	addresses := make(map[string]struct{})
	cursor, err := dbContext.Cursor(indexBucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return nil, err
		}
		addresses[string(key.Suffix())] = struct{}{}
	}
	for address := range stagingShard.toAdd {
		addresses[address] = struct{}{}
	}
	for address := range stagingShard.toDelete {
		delete(addresses, address)
	}

	accounts := make([]*externalapi.Account, 0, len(addresses))
	for address := range addresses {
		account, err := as.account(dbContext, stagingShard, address)
		if err != nil {
			return nil, err
		}
		if filter(account) {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Address < accounts[j].Address
	})
	return accounts, nil
}

// Commitment returns the multiset hash of every account, including the
// staged changes
func (as *accountStore) Commitment(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	commitment, err := as.stagedMultiset(dbContext, as.stagingShard(stagingArea))
	if err != nil {
		return nil, err
	}
	return commitment.Hash(), nil
}

func (as *accountStore) stagedMultiset(dbContext model.DBReader, stagingShard *accountStagingShard) (model.Multiset, error) {
	commitment := as.commitment.Clone()
	replace := func(address string, account *externalapi.Account) error {
		committed, err := as.committedAccount(dbContext, address)
		if err != nil && !database.IsNotFoundError(err) {
			return err
		}
		if err == nil {
			commitment.Remove(serialization.SerializeAccount(committed))
		}
		if account != nil {
			commitment.Add(serialization.SerializeAccount(account))
		}
		return nil
	}

	for address, account := range stagingShard.toAdd {
		err := replace(address, account)
		if err != nil {
			return nil, err
		}
	}
	for address := range stagingShard.toDelete {
		err := replace(address, nil)
		if err != nil {
			return nil, err
		}
	}
	return commitment, nil
}

func (as *accountStore) stage(stagingShard *accountStagingShard, account *externalapi.Account) {
	delete(stagingShard.toDelete, account.Address)
	stagingShard.toAdd[account.Address] = account.Clone()
}

func (as *accountStore) stageDelete(stagingShard *accountStagingShard, address string) {
	delete(stagingShard.toAdd, address)
	stagingShard.toDelete[address] = struct{}{}
}

func (as *accountStore) addressAsKey(address string) model.DBKey {
	return bucket.Key([]byte(address))
}

func (as *accountStore) delegateKey(address string) model.DBKey {
	return delegatesBucket.Key([]byte(address))
}
