// Package misc keeps build time information.
package misc

// Values are set with -ldflags "-X scpview/misc.version=..." at build time.
var (
	appName = "scpview"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
