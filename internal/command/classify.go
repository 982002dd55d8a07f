package command

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/lexware-office/go-lexware-client/core"
)

type ClassifyCommand struct {
	*Command

	flagStatus int
}

func (c *ClassifyCommand) Synopsis() string {
	return "Explain an HTTP status or API error code"
}

func (c *ClassifyCommand) Help() string {
	return `Usage: lexware classify [options] <status|code>

  Shows the category, severity, retryability and suggested action for an
  HTTP status (e.g. 429) or an API error code (e.g. INVALID_API_KEY).
  Use -status to classify an error code as returned with a given status.` + c.Flags().help()
}

func (c *ClassifyCommand) Flags() *flagSet {
	f := c.newFlagSet("classify")
	f.IntVar(&c.flagStatus, "status", 0, "HTTP status the error code was returned with.")
	return f
}

func (c *ClassifyCommand) Run(args []string) int {
	positional, err := c.Flags().parse(args)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if len(positional) != 1 {
		return cli.RunResultHelp
	}
	if err := c.setup(false); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer c.close()

	subject := strings.TrimSpace(positional[0])
	var (
		cls  core.Classification
		name string
	)
	if code, err := strconv.Atoi(subject); err == nil {
		info := core.StatusInfo(code)
		cls, name = info.Classification, fmt.Sprintf("%d %s", info.Status, info.Name)
	} else if c.flagStatus > 0 {
		cls, name = core.Classify(c.flagStatus, subject), fmt.Sprintf("%s (%d)", strings.ToUpper(subject), c.flagStatus)
	} else {
		cls, name = core.ErrorCodeInfo(subject), strings.ToUpper(subject)
	}

	if c.Settings.Output == OutputJSON {
		data, _ := json.MarshalIndent(struct {
			Name string `json:"name"`
			core.Classification
		}{name, cls}, "", "  ")
		c.UI.Output(string(data))
		return 0
	}
	rows := [][]any{
		{"name", name},
		{"category", string(cls.Category)},
		{"severity", string(cls.Severity)},
		{"retryable", strconv.FormatBool(cls.Retryable)},
		{"requiresUserAction", strconv.FormatBool(cls.RequiresUserAction)},
		{"suggestedAction", cls.SuggestedAction},
	}
	if cls.DocLink != "" {
		rows = append(rows, []any{"docLink", cls.DocLink})
	}
	c.UI.Output(table([]string{"attr", "value"}, rows))
	return 0
}
