// Command zinc syncs a Zotero library into an Obsidian vault.
package main

import (
	"os"

	"github.com/aidanlsb/zinc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
