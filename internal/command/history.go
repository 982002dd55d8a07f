package command

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/lexware-office/go-lexware-client/internal/journal"
	"github.com/lexware-office/go-lexware-client/rest"
)

type HistoryCommand struct {
	*Command

	flagResource string
	flagFailed   bool
	flagLimit    int
	flagPrune    int
}

func (c *HistoryCommand) Synopsis() string {
	return "Show operations executed from this machine"
}

func (c *HistoryCommand) Help() string {
	return `Usage: lexware history [options]

  Lists the newest operations recorded by exec and batch, including the
  classification of failed ones. -prune keeps only the newest N entries.` + c.Flags().help()
}

func (c *HistoryCommand) Flags() *flagSet {
	f := c.newFlagSet("history")
	f.StringVar(&c.flagResource, "resource", "", "Only show operations on this resource.")
	f.BoolVar(&c.flagFailed, "failed", false, "Only show failed operations.")
	f.IntVar(&c.flagLimit, "limit", 20, "Maximum number of entries.")
	f.IntVar(&c.flagPrune, "prune", -1, "Delete all but the newest N entries.")
	return f
}

func (c *HistoryCommand) Run(args []string) int {
	if _, err := c.Flags().parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagNoHistory {
		c.UI.Error("-no-history cannot be used with the history command")
		return 1
	}
	if err := c.setup(true); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer c.close()
	if c.Journal == nil {
		c.UI.Error("history is disabled")
		return 1
	}

	if c.flagPrune >= 0 {
		deleted, err := c.Journal.Prune(c.flagPrune)
		if err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		c.UI.Info(fmt.Sprintf("deleted %d entries", deleted))
		return 0
	}

	query := journal.Query{FailedOnly: c.flagFailed, Limit: c.flagLimit}
	if c.flagResource != "" {
		rt, err := rest.ParseResourceType(c.flagResource)
		if err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		query.Resource = string(rt)
	}
	entries, err := c.Journal.Recent(query)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	if c.Settings.Output == OutputJSON {
		data, _ := json.MarshalIndent(entries, "", "  ")
		c.UI.Output(string(data))
		return 0
	}
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		outcome := e.RecordID
		if e.RecordCount > 0 {
			outcome = strconv.Itoa(e.RecordCount) + " records"
		}
		if e.Failed() {
			outcome = e.Category
			if e.StatusCode > 0 {
				outcome = fmt.Sprintf("%d %s", e.StatusCode, e.Category)
			}
		}
		rows = append(rows, []any{
			strconv.FormatUint(uint64(e.ID), 10),
			e.CreatedAt.Local().Format(time.DateTime),
			e.Resource,
			e.Operation,
			e.Status,
			outcome,
			e.Duration.Round(time.Millisecond).String(),
		})
	}
	c.UI.Output(table([]string{"id", "time", "resource", "operation", "status", "outcome", "duration"}, rows))
	return 0
}
