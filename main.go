package main

import (
	"os"

	"savevault/src/cli"
)

func main() {
	os.Exit(cli.Execute())
}
