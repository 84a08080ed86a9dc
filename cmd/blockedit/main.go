package main

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/goliatone/go-streamfield/internal/cli"
)

func main() {
	parser := flags.NewParser(&cli.Opts, flags.Default)
	parser.SubcommandsOptional = false

	_, err := parser.Parse()
	if flags.WroteHelp(err) {
		os.Exit(0)
	} else if err != nil {
		// go-flags has already printed the error.
		os.Exit(1)
	}
}
