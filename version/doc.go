// Package version exposes build information for the service banner and
// telemetry resource.
//
// Version, git commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/svcapp/version.Version=1.0.0"
//
// Values left unset fall back to the module build info recorded by the Go
// toolchain.
package version
