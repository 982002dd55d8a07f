package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bndr/gotabulate"
	"github.com/iancoleman/strcase"

	"github.com/lexware-office/go-lexware-client/core"
	"github.com/lexware-office/go-lexware-client/rest"
)

type ResourcesCommand struct {
	*Command

	flagVerbose bool
}

func (c *ResourcesCommand) Synopsis() string {
	return "List resources and the operations they support"
}

func (c *ResourcesCommand) Help() string {
	return `Usage: lexware resources [options] [resource]

  Lists every resource with its supported operations. With -verbose the
  endpoints behind resource specific operations are shown as well.` + c.Flags().help()
}

func (c *ResourcesCommand) Flags() *flagSet {
	f := c.newFlagSet("resources")
	f.BoolVar(&c.flagVerbose, "verbose", false, "Show the endpoints of resource specific operations.")
	return f
}

func (c *ResourcesCommand) Run(args []string) int {
	positional, err := c.Flags().parse(args)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if err := c.setup(false); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer c.close()

	factory, err := offlineFactory()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	types := factory.SupportedResources()
	if len(positional) > 0 {
		rt, err := rest.ParseResourceType(positional[0])
		if err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		types = []rest.ResourceType{rt}
	}

	if c.Settings.Output == OutputJSON {
		listing := make(map[string][]rest.Operation, len(types))
		for _, rt := range types {
			listing[string(rt)] = factory.Operations(rt)
		}
		data, _ := json.MarshalIndent(listing, "", "  ")
		c.UI.Output(string(data))
		return 0
	}

	var rows [][]any
	for _, rt := range types {
		ops := make([]string, 0)
		for _, op := range factory.Operations(rt) {
			ops = append(ops, string(op))
		}
		rows = append(rows, []any{string(rt), strings.Join(ops, ", ")})
	}
	c.UI.Output(table([]string{"resource", "operations"}, rows))

	if c.flagVerbose {
		var endpoints [][]any
		for _, rt := range types {
			for _, meta := range core.SortedOperationsFor(strcase.ToCamel(string(rt))) {
				if meta.URLPath == "" {
					continue
				}
				endpoints = append(endpoints, []any{string(rt), meta.Name, meta.HTTPVerb + " " + meta.URLPath, meta.Summary})
			}
		}
		if len(endpoints) > 0 {
			c.UI.Output(table([]string{"resource", "operation", "endpoint", "summary"}, endpoints))
		}
	}
	return 0
}

// offlineFactory builds a factory for introspection. It never sends a request.
func offlineFactory() (*rest.ResourceFactory, error) {
	client, err := rest.NewLexwareRest(&core.Config{ApiKey: "offline"})
	if err != nil {
		return nil, err
	}
	return rest.NewResourceFactory(client), nil
}

func table(headers []string, rows [][]any) string {
	if len(rows) == 0 {
		return "<>"
	}
	t := gotabulate.Create(rows)
	t.SetHeaders(headers)
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(60)
	return t.Render("grid")
}
