package version

import (
	"fmt"
	"strings"
)

// validBuildCharacters is a list of characters valid in the appBuild string
const validBuildCharacters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

const (
	appMajor uint = 0
	appMinor uint = 1
	appPatch uint = 0
)

// appBuild may be set at link time with
// '-ldflags "-X github.com/dposnet/dposd/version.appBuild=foo"'.
// It is ignored unless it only contains validBuildCharacters.
var appBuild string

// Version returns the application version as a properly formed string
func Version() string {
	version := fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
	if isValidBuild(appBuild) {
		version = fmt.Sprintf("%s-%s", version, appBuild)
	}
	return version
}

func isValidBuild(build string) bool {
	if build == "" {
		return false
	}
	for _, r := range build {
		if !strings.ContainsRune(validBuildCharacters, r) {
			return false
		}
	}
	return true
}
