package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gophersatwork/assetpack/internal/command"
	mylog "github.com/gophersatwork/assetpack/internal/log"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	}

	app := command.InitApp(command.DefaultMeta())
	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
