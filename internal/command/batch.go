package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/cli"
	"go.uber.org/zap"

	"github.com/lexware-office/go-lexware-client/core"
	"github.com/lexware-office/go-lexware-client/rest"
)

type BatchCommand struct {
	*Command

	flagContinueOnFail bool
	flagRetries        int

	// sleep waits between retries. Replaced in tests.
	sleep func(context.Context, time.Duration) error
}

// itemResult is the output of one batch item. Failed items carry the error and their input.
type itemResult struct {
	Index  int             `json:"index"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Input  core.Params     `json:"input,omitempty"`
}

func (c *BatchCommand) Synopsis() string {
	return "Execute one operation for every item of a JSON array"
}

func (c *BatchCommand) Help() string {
	return `Usage: lexware batch [options] <resource> <operation> <items>

  Runs the operation once per item. <items> is a JSON array of parameter
  objects, given inline, as @file or as - for stdin:

      lexware batch contact create @contacts.json -continue-on-fail

  Without -continue-on-fail the run stops at the first failed item.
  Failed requests are never repeated unless -retries is set, and then only
  when the failure is classified as retryable.` + c.Flags().help()
}

func (c *BatchCommand) Flags() *flagSet {
	f := c.newFlagSet("batch")
	f.BoolVar(&c.flagContinueOnFail, "continue-on-fail", false,
		"Record failures per item and continue with the next item.")
	f.IntVar(&c.flagRetries, "retries", 0, "Retry retryable failures up to this many times per item.")
	return f
}

func (c *BatchCommand) Run(args []string) int {
	flags := c.Flags()
	positional, err := flags.parse(args)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if len(positional) != 3 {
		c.UI.Error("resource, operation and items are required")
		return cli.RunResultHelp
	}
	if c.flagRetries < 0 {
		c.UI.Error("retries must not be negative")
		return 1
	}
	rt, op, err := resourceOperation(positional)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	items, err := parseItems(positional[2])
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

	ctx := context.Background()
	results := make([]itemResult, 0, len(items))
	failed := 0
	for i, item := range items {
		result, err := c.runItem(ctx, factory, rt, op, item)
		if err != nil {
			failed++
			if !c.flagContinueOnFail {
				c.output(results)
				c.UI.Error(fmt.Sprintf("item %d failed", i))
				c.reportError(err)
				return 1
			}
			results = append(results, itemResult{Index: i, Error: err.Error(), Input: item})
			continue
		}
		results = append(results, itemResult{Index: i, Result: json.RawMessage(result.PrettyJson())})
	}
	c.output(results)
	c.Log.Info("batch finished",
		zap.String("resource", string(rt)),
		zap.String("operation", string(op)),
		zap.Int("items", len(items)),
		zap.Int("failed", failed))
	if failed > 0 {
		c.UI.Warn(fmt.Sprintf("%d of %d items failed", failed, len(items)))
	}
	return 0
}

// runItem executes one item, retrying retryable failures with the suggested delay.
func (c *BatchCommand) runItem(ctx context.Context, f *rest.ResourceFactory, rt rest.ResourceType, op rest.Operation, item core.Params) (rest.Result, error) {
	sleep := c.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	for attempt := 1; ; attempt++ {
		result, err := c.execute(ctx, f, rt, op, item.Clone())
		if err == nil {
			return result, nil
		}
		if attempt > c.flagRetries || !core.IsRetryable(err) {
			return nil, err
		}
		delay := core.SuggestedRetryDelay(err, attempt)
		c.Log.Info("retrying item",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (c *BatchCommand) output(results []itemResult) {
	if c.Settings.Output == OutputJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			c.UI.Error(err.Error())
			return
		}
		c.UI.Output(string(data))
		return
	}
	var b strings.Builder
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(&b, "#%d error: %s\n", r.Index, r.Error)
			continue
		}
		fmt.Fprintf(&b, "#%d %s\n", r.Index, renderRaw(r.Result))
	}
	c.UI.Output(strings.TrimRight(b.String(), "\n"))
}

// renderRaw renders a JSON result as a table when it is an object or list of objects.
func renderRaw(raw json.RawMessage) string {
	var record core.Record
	if err := json.Unmarshal(raw, &record); err == nil {
		return record.PrettyTable()
	}
	var records core.RecordSet
	if err := json.Unmarshal(raw, &records); err == nil {
		return records.PrettyTable()
	}
	return string(raw)
}

func parseItems(arg string) ([]core.Params, error) {
	raw, err := readArg(arg, os.Stdin)
	if err != nil {
		return nil, err
	}
	var items []core.Params
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("items must be a JSON array of objects: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("items must not be empty")
	}
	return items, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
