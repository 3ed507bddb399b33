// Command shopctl is a small client for the catalog API. It signs in through
// the session client so expired access tokens are refreshed transparently.
package main

import (
	"os"

	"github.com/jrsteele09/go-catalog-server/internal/logging"
)

func main() {
	logging.Configure(os.Stderr, "DEV", "warn")
	if err := newRootCmd().Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
