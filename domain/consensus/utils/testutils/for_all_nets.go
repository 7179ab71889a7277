package testutils

import (
	"testing"

	"github.com/dposnet/dposd/domain/dposconfig"
)

// ForAllNets runs the passed testFunc with all available networks
func ForAllNets(t *testing.T, testFunc func(*testing.T, *dposconfig.Params)) {
	allParams := []dposconfig.Params{
		dposconfig.DevnetParams,
		dposconfig.SimnetParams,
	}

	for _, params := range allParams {
		params := params
		t.Run(params.Name, func(t *testing.T) {
			t.Parallel()
			t.Logf("Running test for %s", params.Name)
			testFunc(t, &params)
		})
	}
}
