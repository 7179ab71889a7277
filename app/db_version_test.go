package app

import (
	"io/ioutil"
	"os"
	"testing"
)

func TestDatabaseVersion(t *testing.T) {
	dbPath, err := ioutil.TempDir("", "TestDatabaseVersion")
	if err != nil {
		t.Fatalf("TestDatabaseVersion: TempDir: %v", err)
	}
	defer os.RemoveAll(dbPath)

	exists, err := checkDatabaseVersion(dbPath)
	if err != nil || exists {
		t.Fatalf("TestDatabaseVersion: expected no version file, got exists=%t err=%v", exists, err)
	}

	err = createDatabaseVersionFile(dbPath)
	if err != nil {
		t.Fatalf("TestDatabaseVersion: createDatabaseVersionFile: %v", err)
	}
	exists, err = checkDatabaseVersion(dbPath)
	if err != nil || !exists {
		t.Fatalf("TestDatabaseVersion: expected a valid version file, got exists=%t err=%v", exists, err)
	}

	err = ioutil.WriteFile(versionFilePath(dbPath), []byte("2"), 0600)
	if err != nil {
		t.Fatalf("TestDatabaseVersion: WriteFile: %v", err)
	}
	_, err = checkDatabaseVersion(dbPath)
	if err == nil {
		t.Fatalf("TestDatabaseVersion: expected an error for an unknown version")
	}
}
