// Command file-prompts serves Markdown prompts and resources over MCP.
package main

import (
	"os"

	"github.com/custodia-labs/file-prompts/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
