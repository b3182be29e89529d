// Command rituals tracks recurring team rituals in a local SQLite database.
package main

import (
	"os"

	"github.com/roach88/rituals/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
