// main holds the entry logic for the barrace CLI.
package main

import (
	"os"

	"github.com/huangsam/barrace/cmd"
	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/internal/iocache"
)

// main wires the global store manager into the CLI and runs it.
func main() {
	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseStores()

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		iocache.CloseStores()
		contract.Logger().Error("Command failed", "err", err)
		os.Exit(1)
	}
}
