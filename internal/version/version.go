// Package version holds build-time version information.
package version

// Version is the application version, overridden at build time with
//
//	-ldflags "-X github.com/ndewijer/Dividend-Portfolio-Backtester/internal/version.Version=v1.2.3"
var Version = "dev"
