package main

import (
	"os"

	"github.com/urfave/cli/v2"
	movement "github.com/zabit11/movement"
	"github.com/zabit11/movement/common"
	"github.com/zabit11/movement/config"
	"github.com/zabit11/movement/log"
)

const appName = "movement"

var (
	configFileFlag = cli.StringSliceFlag{
		Name:     config.FlagCfg,
		Aliases:  []string{"c"},
		Usage:    "Configuration file(s)",
		Required: false,
	}
	componentsFlag = cli.StringSliceFlag{
		Name:     config.FlagComponents,
		Aliases:  []string{"co"},
		Usage:    "List of components to run",
		Required: false,
		Value:    cli.NewStringSlice(common.RPC, common.REFUND_SPONSOR),
	}
	saveConfigFlag = cli.StringFlag{
		Name:     config.FlagSaveConfigPath,
		Aliases:  []string{"s"},
		Usage:    "Save final configuration into the indicated path (name: " + config.SaveConfigFileName + ")",
		Required: false,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = appName
	app.Version = movement.Version
	flags := []cli.Flag{
		&configFileFlag,
		&componentsFlag,
		&saveConfigFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{},
			Usage:   "Application version and build",
			Action:  versionCmd,
		},
		{
			Name:    "config",
			Aliases: []string{},
			Usage:   "Print the default configuration",
			Action:  configCmd,
		},
		{
			Name:    "run",
			Aliases: []string{},
			Usage:   "Run the movement node",
			Action:  start,
			Flags:   flags,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}
