// Package version reports the build version of iockit binaries.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/iockit/version.Version=1.0.0" ./cmd/shopdemo
package version
