package consensus

import (
	"context"
	"io/ioutil"
	"os"
	"testing"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/dposconfig"
	"github.com/dposnet/dposd/infrastructure/db/database/ldb"
	"github.com/pkg/errors"
)

func TestNewConsensus(t *testing.T) {
	dataDir, err := ioutil.TempDir("", "TestNewConsensus")
	if err != nil {
		t.Fatalf("TempDir: %+v", err)
	}
	defer os.RemoveAll(dataDir)

	db, err := ldb.NewLevelDB(dataDir, 8)
	if err != nil {
		t.Fatalf("NewLevelDB: %+v", err)
	}
	defer db.Close()

	factory := NewFactory()
	simnetParams := dposconfig.SimnetParams

	c, err := factory.NewConsensus(&simnetParams, db)
	if err != nil {
		t.Fatalf("NewConsensus: %+v", err)
	}
	err = c.ApplyBlock(context.Background(), simnetParams.GenesisBlock, externalapi.ApplyOptions{Persist: true})
	if !errors.Is(err, ruleerrors.ErrNotLoaded) {
		t.Fatalf("TestNewConsensus: expected ErrNotLoaded before Init, got %v", err)
	}
	err = c.Init(context.Background())
	if err != nil {
		t.Fatalf("Init: %+v", err)
	}
	c.Stop()

	// Reopening loads the stored chain
	c, err = factory.NewConsensus(&simnetParams, db)
	if err != nil {
		t.Fatalf("NewConsensus: %+v", err)
	}
	err = c.Init(context.Background())
	if err != nil {
		t.Fatalf("TestNewConsensus: Init of an existing database: %+v", err)
	}
	tip, err := c.LastBlock()
	if err != nil {
		t.Fatalf("LastBlock: %+v", err)
	}
	if !tip.ID.Equal(simnetParams.GenesisBlock.ID) {
		t.Fatalf("TestNewConsensus: expected the genesis block as tip, got %s", tip.ID)
	}
	c.Stop()

	// A database of another network is refused
	devnetParams := dposconfig.DevnetParams
	c, err = factory.NewConsensus(&devnetParams, db)
	if err != nil {
		t.Fatalf("NewConsensus: %+v", err)
	}
	defer c.Stop()
	err = c.Init(context.Background())
	if !errors.Is(err, ruleerrors.ErrGenesisMismatch) {
		t.Fatalf("TestNewConsensus: expected ErrGenesisMismatch, got %v", err)
	}
}
