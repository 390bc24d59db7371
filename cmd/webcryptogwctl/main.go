// Command webcryptogwctl is a thin control CLI for exercising a running
// webcryptogwd instance: a cobra command tree sharing one bootstrapped
// app context across subcommands.
package main

import (
	"os"

	"github.com/murat-sen-cloudpeer/webcrypto-local/cmd/webcryptogwctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
