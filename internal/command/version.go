package command

import (
	"fmt"

	"github.com/lexware-office/go-lexware-client/core"
)

type VersionCommand struct {
	*Command
}

func (c *VersionCommand) Synopsis() string {
	return "Print the client version"
}

func (c *VersionCommand) Help() string {
	return "Usage: lexware version"
}

func (c *VersionCommand) Run(_ []string) int {
	c.UI.Output(fmt.Sprintf("lexware %s (API %s)", core.ClientVersion(), core.DefaultApiVersion))
	return 0
}
