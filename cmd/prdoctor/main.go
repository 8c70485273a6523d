package main

import (
	"os"

	"github.com/dshills/prdoctor/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
