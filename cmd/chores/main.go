// Command chores schedules recurring household chores.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/chores/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
