package command

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/lexware-office/go-lexware-client/core"
)

// Main runs the CLI with the given arguments and returns the exit code.
func Main(args []string) int {
	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}
	return Run(args, ui)
}

// Run runs the CLI writing to ui.
func Run(args []string, ui cli.Ui) int {
	cliName := "lexware"
	if len(args) > 0 {
		cliName = args[0]
		args = args[1:]
	}
	if len(args) == 1 && (args[0] == "-version" || args[0] == "-v") {
		args = []string{"version"}
	}

	// Help and usage errors written by cli.CLI go through ui as well.
	var helpOut, errOut bytes.Buffer
	c := &cli.CLI{
		Name:        cliName,
		Args:        args,
		Version:     core.ClientVersion(),
		Commands:    Commands(ui),
		HelpWriter:  &helpOut,
		ErrorWriter: &errOut,
	}
	exitCode, err := c.Run()
	if text := strings.TrimRight(helpOut.String(), "\n"); text != "" {
		ui.Output(text)
	}
	if text := strings.TrimRight(errOut.String(), "\n"); text != "" {
		ui.Error(text)
	}
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	return exitCode
}

// Commands returns the subcommand factories. Each invocation gets a fresh Command.
func Commands(ui cli.Ui) map[string]cli.CommandFactory {
	base := func() *Command { return &Command{UI: ui} }
	return map[string]cli.CommandFactory{
		"exec": func() (cli.Command, error) {
			return &ExecCommand{Command: base()}, nil
		},
		"batch": func() (cli.Command, error) {
			return &BatchCommand{Command: base()}, nil
		},
		"resources": func() (cli.Command, error) {
			return &ResourcesCommand{Command: base()}, nil
		},
		"classify": func() (cli.Command, error) {
			return &ClassifyCommand{Command: base()}, nil
		},
		"history": func() (cli.Command, error) {
			return &HistoryCommand{Command: base()}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{Command: base()}, nil
		},
	}
}
