package main

import (
	"os"

	"github.com/urfave/cli/v2"
	movement "github.com/zabit11/movement"
)

func versionCmd(*cli.Context) error {
	movement.PrintVersion(os.Stdout)
	return nil
}
