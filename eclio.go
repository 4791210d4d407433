package main

import (
	"os"

	"github.com/phil-mansfield/eclio/lib"
	"github.com/phil-mansfield/eclio/lib/error"
	"github.com/phil-mansfield/eclio/lib/logger"
)

func main() {
	// Parse arguments.
	modeName, configFile, cmdArgs, err := lib.ParseCommandLine(os.Args[1:])
	if err != nil { error.External("%s", err.Error()) }
	mode, err := lib.ParseMode(modeName)
	if err != nil { error.External("%s", err.Error()) }

	if mode == lib.HelpMode {
		lib.PrintHelp(os.Stdout)
		return
	}

	rawArgs, err := lib.ParseConfigFile(configFile)
	if err != nil { error.External("%s", err.Error()) }
	rawArgs.Overwrite(cmdArgs)

	// Do processing that doesn't need external validation.
	args, err := rawArgs.Process()
	if err != nil { error.External("%s", err.Error()) }

	err = logger.Init(logger.Config{ Level: args.LogLevel })
	if err != nil { error.External("%s", err.Error()) }
	defer logger.Sync()

	if err := lib.SetThreads(args.Threads); err != nil {
		error.External("%s", err.Error())
	}
	if err := lib.Check(mode, args); err != nil {
		error.External("%s", err.Error())
	}

	// Run the chosen mode.
	if err := lib.Run(mode, os.Stdout, args); err != nil {
		error.External("%s", err.Error())
	}
}
