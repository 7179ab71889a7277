package testutils

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/infrastructure/db/database/ldb"
)

// PrepareDatabaseForTest opens a LevelDB database in a temporary directory.
// The returned teardown function closes and removes it.
func PrepareDatabaseForTest(t *testing.T, testName string) (dbManager model.DBManager, teardownFunc func()) {
	path, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly failed: %s", testName, err)
	}
	db, err := ldb.NewLevelDB(path, 8)
	if err != nil {
		t.Fatalf("%s: NewLevelDB unexpectedly failed: %s", testName, err)
	}
	teardownFunc = func() {
		err = db.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly failed: %s", testName, err)
		}
		os.RemoveAll(path)
	}
	return database.New(db), teardownFunc
}

// CommitStagingArea commits stagingArea in a new database transaction
func CommitStagingArea(t *testing.T, dbManager model.DBManager, stagingArea *model.StagingArea) {
	dbTx, err := dbManager.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}
	defer dbTx.RollbackUnlessClosed()

	err = stagingArea.Commit(dbTx)
	if err != nil {
		t.Fatalf("Commit staging area: %+v", err)
	}
	err = dbTx.Commit()
	if err != nil {
		t.Fatalf("Commit transaction: %+v", err)
	}
}
