// Package main provides the portalctl maintenance CLI.
package main

import (
	"os"

	"github.com/sisemasexp/portal/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
