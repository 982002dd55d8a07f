package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/lexware-office/go-lexware-client/core"
	"github.com/lexware-office/go-lexware-client/rest"
)

type ExecCommand struct {
	*Command

	flagParams string
	flagOut    string
}

func (c *ExecCommand) Synopsis() string {
	return "Execute one operation on a resource"
}

func (c *ExecCommand) Help() string {
	return `Usage: lexware exec [options] <resource> <operation> [key=value ...]

  Executes a single operation, for example:

      lexware exec contact getAll limit=10
      lexware exec invoice create -params @invoice.json
      lexware exec invoice downloadFile id=<uuid> -out invoice.pdf

  Parameter values are decoded as JSON when possible, so numbers, booleans,
  objects and lists can be passed inline.` + c.Flags().help()
}

func (c *ExecCommand) Flags() *flagSet {
	f := c.newFlagSet("exec")
	f.StringVar(&c.flagParams, "params", "", "Parameters as a JSON object, @file or - for stdin.")
	f.StringVar(&c.flagOut, "out", "", "Write downloaded file content to this path.")
	return f
}

func (c *ExecCommand) Run(args []string) int {
	flags := c.Flags()
	positional, err := flags.parse(args)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if len(positional) < 2 {
		c.UI.Error("resource and operation are required")
		return cli.RunResultHelp
	}
	rt, op, err := resourceOperation(positional)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	params, err := parseParams(c.flagParams, positional[2:], os.Stdin)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	if err := c.setup(true); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer c.close()

	factory, err := c.factory()
	if err != nil {
		c.reportError(err)
		return 1
	}
	result, err := c.execute(context.Background(), factory, rt, op, params)
	if err != nil {
		c.reportError(err)
		return 1
	}
	if file, ok := result.(*core.BinaryData); ok && c.flagOut != "" {
		if err := os.WriteFile(c.flagOut, file.Content, 0o644); err != nil {
			c.UI.Error(fmt.Sprintf("failed to write %s: %v", c.flagOut, err))
			return 1
		}
		c.UI.Info(fmt.Sprintf("wrote %d bytes to %s", file.Size(), c.flagOut))
		return 0
	}
	c.render(result)
	return 0
}

// resourceOperation parses the first two positional arguments.
func resourceOperation(args []string) (rest.ResourceType, rest.Operation, error) {
	if len(args) < 2 {
		return "", "", fmt.Errorf("resource and operation are required")
	}
	rt, err := rest.ParseResourceType(args[0])
	if err != nil {
		return "", "", err
	}
	op, err := rest.ParseOperation(strings.TrimSpace(args[1]))
	if err != nil {
		return "", "", err
	}
	return rt, op, nil
}
