package main

import (
	"os"

	"github.com/mrlokans/pharmastudy/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
