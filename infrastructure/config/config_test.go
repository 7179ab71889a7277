package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dposnet/dposd/domain/dposconfig"
)

func setupTestDir(t *testing.T, testName string) (dir string, teardown func()) {
	dir, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: Failed creating a temporary directory: %v", testName, err)
	}
	return dir, func() { os.RemoveAll(dir) }
}

func TestParseConfigDefaults(t *testing.T) {
	dir, teardown := setupTestDir(t, "TestParseConfigDefaults")
	defer teardown()

	cfg, err := parseConfig([]string{"--simnet", "--configfile", filepath.Join(dir, "missing.conf"),
		"--datadir", dir})
	if err != nil {
		t.Fatalf("TestParseConfigDefaults: parseConfig: %+v", err)
	}
	if cfg.NetParams().Name != dposconfig.SimnetParams.Name {
		t.Fatalf("TestParseConfigDefaults: expected simnet, got %s", cfg.NetParams().Name)
	}
	if cfg.DataDir != filepath.Join(dir, "simnet") {
		t.Fatalf("TestParseConfigDefaults: expected the data dir to be namespaced, got %s", cfg.DataDir)
	}
	if cfg.TransactionTimeout != defaultTransactionTimeout || cfg.ExpiryInterval != defaultExpiryInterval {
		t.Fatalf("TestParseConfigDefaults: unexpected pool defaults %s, %s",
			cfg.TransactionTimeout, cfg.ExpiryInterval)
	}

	poolConfig := cfg.TransactionPoolConfig()
	if poolConfig.MaxTransactionsPerQueue != defaultMaxTransactionsPerQueue ||
		poolConfig.MaxMultisignatureLifetime != dposconfig.SimnetParams.MaxMultisignatureLifetime {
		t.Fatalf("TestParseConfigDefaults: unexpected pool config %+v", poolConfig)
	}
}

func TestCommandLineOverridesConfigFile(t *testing.T) {
	dir, teardown := setupTestDir(t, "TestCommandLineOverridesConfigFile")
	defer teardown()

	configFile := filepath.Join(dir, "dposd.conf")
	content := "simnet=1\ntxtimeout=5m\nmaxtxsperqueue=50\nsnapshothistory=20\n"
	err := ioutil.WriteFile(configFile, []byte(content), 0600)
	if err != nil {
		t.Fatalf("TestCommandLineOverridesConfigFile: WriteFile: %v", err)
	}

	cfg, err := parseConfig([]string{"--configfile", configFile, "--maxtxsperqueue", "70"})
	if err != nil {
		t.Fatalf("TestCommandLineOverridesConfigFile: parseConfig: %+v", err)
	}
	if cfg.TransactionTimeout != 5*time.Minute {
		t.Fatalf("TestCommandLineOverridesConfigFile: expected txtimeout from the file, got %s",
			cfg.TransactionTimeout)
	}
	if cfg.MaxTransactionsPerQueue != 70 {
		t.Fatalf("TestCommandLineOverridesConfigFile: expected maxtxsperqueue from the command line, got %d",
			cfg.MaxTransactionsPerQueue)
	}
	if cfg.NetParams().RoundSnapshotHistory != 20 {
		t.Fatalf("TestCommandLineOverridesConfigFile: expected 20 snapshots, got %d",
			cfg.NetParams().RoundSnapshotHistory)
	}
	if dposconfig.SimnetParams.RoundSnapshotHistory == 20 {
		t.Fatalf("TestCommandLineOverridesConfigFile: the registered simnet params were modified")
	}
}

func TestInvalidConfigs(t *testing.T) {
	dir, teardown := setupTestDir(t, "TestInvalidConfigs")
	defer teardown()
	missingConfigFile := filepath.Join(dir, "missing.conf")

	tests := []struct {
		name string
		args []string
	}{
		{name: "no network", args: []string{}},
		{name: "two networks", args: []string{"--simnet", "--devnet"}},
		{name: "zero txtimeout", args: []string{"--simnet", "--txtimeout", "0s"}},
		{name: "empty queues", args: []string{"--simnet", "--maxtxsperqueue", "0"}},
		{name: "short expiry interval", args: []string{"--simnet", "--expiryinterval", "10ms"}},
		{name: "bad profile port", args: []string{"--simnet", "--profile", "80"}},
		{name: "bad metrics address", args: []string{"--simnet", "--metricslisten", "9100"}},
		{name: "single snapshot", args: []string{"--simnet", "--snapshothistory", "1"}},
		{name: "override params on simnet", args: []string{"--simnet", "--override-params-file", "params.json"}},
	}

	for _, test := range tests {
		args := append([]string{"--configfile", missingConfigFile}, test.args...)
		_, err := parseConfig(args)
		if err == nil {
			t.Errorf("TestInvalidConfigs: %s: expected an error", test.name)
		}
	}
}

func TestOverrideParams(t *testing.T) {
	dir, teardown := setupTestDir(t, "TestOverrideParams")
	defer teardown()

	paramsFile := filepath.Join(dir, "params.json")
	err := ioutil.WriteFile(paramsFile, []byte(`{"blockTime": 3, "maxTransactionsPerBlock": 50}`), 0600)
	if err != nil {
		t.Fatalf("TestOverrideParams: WriteFile: %v", err)
	}

	cfg, err := parseConfig([]string{"--devnet", "--configfile", filepath.Join(dir, "missing.conf"),
		"--override-params-file", paramsFile})
	if err != nil {
		t.Fatalf("TestOverrideParams: parseConfig: %+v", err)
	}
	if cfg.NetParams().BlockTime != 3 || cfg.NetParams().MaxTransactionsPerBlock != 50 {
		t.Fatalf("TestOverrideParams: the params were not overridden")
	}
	if dposconfig.DevnetParams.BlockTime != 10 {
		t.Fatalf("TestOverrideParams: the registered devnet params were modified")
	}

	err = ioutil.WriteFile(paramsFile, []byte(`{"activeDelegates": 3}`), 0600)
	if err != nil {
		t.Fatalf("TestOverrideParams: WriteFile: %v", err)
	}
	_, err = parseConfig([]string{"--devnet", "--configfile", filepath.Join(dir, "missing.conf"),
		"--override-params-file", paramsFile})
	if err == nil {
		t.Fatalf("TestOverrideParams: expected an error for a param that can't be overridden")
	}
}
