package consensus

import (
	"context"
	"io/ioutil"
	"os"
	"sync"

	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/datastructures/accountstore"
	"github.com/dposnet/dposd/domain/consensus/datastructures/blockstore"
	"github.com/dposnet/dposd/domain/consensus/datastructures/mutationlogstore"
	"github.com/dposnet/dposd/domain/consensus/datastructures/roundstore"
	"github.com/dposnet/dposd/domain/consensus/datastructures/transactionstore"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/model/testapi"
	"github.com/dposnet/dposd/domain/consensus/processes/blockbuilder"
	"github.com/dposnet/dposd/domain/consensus/processes/blockprocessor"
	"github.com/dposnet/dposd/domain/consensus/processes/blockvalidator"
	"github.com/dposnet/dposd/domain/consensus/processes/delegatelistbuilder"
	"github.com/dposnet/dposd/domain/consensus/processes/roundaccountant"
	"github.com/dposnet/dposd/domain/consensus/processes/sequencer"
	"github.com/dposnet/dposd/domain/consensus/processes/transactionapplier"
	"github.com/dposnet/dposd/domain/consensus/processes/transactionvalidator"
	"github.com/dposnet/dposd/domain/consensus/utils/signing"
	"github.com/dposnet/dposd/domain/consensus/utils/slots"
	"github.com/dposnet/dposd/domain/dposconfig"
	infrastructuredatabase "github.com/dposnet/dposd/infrastructure/db/database"
	"github.com/dposnet/dposd/infrastructure/db/database/ldb"
	"github.com/dposnet/dposd/util/mstime"
	"github.com/pkg/errors"
)

const (
	defaultAccountCacheSize     = 10000
	defaultBlockCacheSize       = 200
	defaultTransactionCacheSize = 10000
	defaultRoundCacheSize       = 20
	defaultTestLevelDBCacheSize = 8
)

// Factory instantiates new Consensuses
type Factory interface {
	NewConsensus(params *dposconfig.Params, db infrastructuredatabase.Database) (externalapi.Consensus, error)
	NewTestConsensus(params *dposconfig.Params, testName string) (
		tc testapi.TestConsensus, teardown func(keepDataDir bool), err error)

	SetTestDataDir(dataDir string)
}

type factory struct {
	dataDir string
}

// NewFactory creates a new Consensus factory
func NewFactory() Factory {
	return &factory{}
}

// NewConsensus instantiates a new Consensus on top of db. Init must be
// called before the ledger can be used.
func (f *factory) NewConsensus(params *dposconfig.Params, db infrastructuredatabase.Database) (
	externalapi.Consensus, error) {

	return f.newConsensus(params, db, mstime.SystemClock{})
}

func (f *factory) newConsensus(params *dposconfig.Params, db infrastructuredatabase.Database,
	wallClock model.Clock) (*consensus, error) {

	dbManager := database.New(db)
	slotClock := slots.New(params.Epoch, params.BlockTime, params.ActiveDelegates)
	crypto := signing.New()

	// Data Structures
	accountStore, err := accountstore.New(dbManager, defaultAccountCacheSize)
	if err != nil {
		return nil, err
	}
	blockStore, err := blockstore.New(dbManager, defaultBlockCacheSize)
	if err != nil {
		return nil, err
	}
	transactionStore, err := transactionstore.New(defaultTransactionCacheSize)
	if err != nil {
		return nil, err
	}
	roundStore, err := roundstore.New(defaultRoundCacheSize)
	if err != nil {
		return nil, err
	}
	mutationLogStore := mutationlogstore.New()

	// Processes
	delegateListBuilder := delegatelistbuilder.New(
		dbManager,
		slotClock,
		accountStore,
		blockStore,
		roundStore)
	roundAccountant := roundaccountant.New(
		dbManager,
		slotClock,
		params.RoundSnapshotHistory,
		delegateListBuilder,
		accountStore,
		blockStore,
		roundStore)
	transactionValidator := transactionvalidator.New(
		params,
		dbManager,
		crypto,
		accountStore)
	transactionApplier := transactionapplier.New(
		dbManager,
		accountStore)
	blockValidator := blockvalidator.New(
		params,
		dbManager,
		crypto,
		slotClock,
		wallClock,
		transactionValidator,
		delegateListBuilder,
		blockStore,
		transactionStore)
	blockBuilder := blockbuilder.New(
		params,
		dbManager,
		crypto,
		transactionValidator,
		transactionApplier,
		blockStore,
		transactionStore)
	blockProcessor := blockprocessor.New(
		params,
		dbManager,
		blockValidator,
		transactionValidator,
		transactionApplier,
		roundAccountant,
		accountStore,
		blockStore,
		transactionStore,
		mutationLogStore)

	c := &consensus{
		lock:            &sync.RWMutex{},
		params:          params,
		databaseContext: dbManager,
		slotClock:       slotClock,
		sequencer:       sequencer.New(&model.NodeState{}),

		blockProcessor:       blockProcessor,
		blockBuilder:         blockBuilder,
		blockValidator:       blockValidator,
		transactionValidator: transactionValidator,
		transactionApplier:   transactionApplier,
		delegateListBuilder:  delegateListBuilder,
		roundAccountant:      roundAccountant,

		accountStore:     accountStore,
		blockStore:       blockStore,
		transactionStore: transactionStore,
		mutationLogStore: mutationLogStore,
		roundStore:       roundStore,
	}
	return c, nil
}

// NewTestConsensus opens a LevelDB database in a temporary directory and
// builds a TestConsensus on it whose wall clock only moves when forging.
// The genesis block is already applied.
func (f *factory) NewTestConsensus(params *dposconfig.Params, testName string) (
	tc testapi.TestConsensus, teardown func(keepDataDir bool), err error) {

	dataDir, err := ioutil.TempDir(f.dataDir, testName)
	if err != nil {
		return nil, nil, err
	}
	db, err := ldb.NewLevelDB(dataDir, defaultTestLevelDBCacheSize)
	if err != nil {
		return nil, nil, err
	}

	wallClock := mstime.NewManualClock(params.Epoch)
	c, err := f.newConsensus(params, db, wallClock)
	if err != nil {
		return nil, nil, err
	}
	testConsensus, err := newTestConsensus(c, wallClock)
	if err != nil {
		return nil, nil, err
	}

	teardown = func(keepDataDir bool) {
		c.Stop()
		closeErr := db.Close()
		if closeErr != nil {
			panic(errors.Wrapf(closeErr, "could not close the database of %s", testName))
		}
		if !keepDataDir {
			err := os.RemoveAll(dataDir)
			if err != nil {
				log.Errorf("Error removing data directory for test consensus: %s", err)
			}
		}
	}

	err = testConsensus.Init(context.Background())
	if err != nil {
		teardown(false)
		return nil, nil, err
	}
	return testConsensus, teardown, nil
}

// SetTestDataDir sets the parent directory of the test consensus databases
func (f *factory) SetTestDataDir(dataDir string) {
	f.dataDir = dataDir
}
