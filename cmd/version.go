// File: cmd/version.go
package cmd

// Version is the application version, overridden at build time:
//
//	go build -ldflags "-X github.com/draftbay/lister-cli/cmd.Version=v0.2.0"
var Version = "v0.1.0-dev"
