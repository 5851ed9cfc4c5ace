// Package buildinfo reports the version of the ecigate binaries.
//
// Release builds set the variables through ldflags:
//
//	go build -ldflags "-X github.com/yndnr/ecigate-go/internal/infra/buildinfo.Version=v1.0.0 \
//	  -X github.com/yndnr/ecigate-go/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// Unset values fall back to the module build information embedded by the
// Go toolchain.
package buildinfo
