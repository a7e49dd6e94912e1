// Package version reports the build identity of the techdocs binary.
//
// Values are stamped at link time and completed from the module build
// info when absent:
//
//	go build -ldflags "-X github.com/kbukum/techdocs/version.Version=1.4.0" ./cmd/techdocs
package version
