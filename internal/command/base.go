package command

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/cli"
	"go.uber.org/zap"

	"github.com/lexware-office/go-lexware-client/core"
	"github.com/lexware-office/go-lexware-client/internal/journal"
	"github.com/lexware-office/go-lexware-client/internal/logging"
	"github.com/lexware-office/go-lexware-client/rest"
)

// Command holds what every subcommand shares: the UI, settings, logger and history journal.
type Command struct {
	UI  cli.Ui
	Log *zap.Logger

	Settings *Settings
	Journal  *journal.Service

	flagConfig    string
	flagOutput    string
	flagNoHistory bool

	closers []func()
}

// flagSet is a flag.FlagSet that accepts flags between positional arguments.
type flagSet struct {
	*flag.FlagSet
}

// newFlagSet returns a flagSet with the options shared by all subcommands.
func (c *Command) newFlagSet(name string) *flagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.StringVar(&c.flagConfig, "config", "", "Path to a lexware.yaml/.toml config file.")
	f.StringVar(&c.flagOutput, "output", "", "Output format, table or json. Overrides the config.")
	f.BoolVar(&c.flagNoHistory, "no-history", false, "Do not record the operation in the local history.")
	return &flagSet{f}
}

// parse parses args and returns the positional arguments in order.
func (f *flagSet) parse(args []string) ([]string, error) {
	var positional []string
	for {
		if err := f.Parse(args); err != nil {
			return nil, err
		}
		args = f.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func (f *flagSet) help() string {
	var b strings.Builder
	b.WriteString("\n\nOptions:\n")
	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&b, "\n  -%s\n      %s\n", fl.Name, fl.Usage)
	})
	return b.String()
}

// setup loads settings and opens the logger. The journal is opened only when withHistory is set.
func (c *Command) setup(withHistory bool) error {
	settings, err := LoadSettings(c.flagConfig)
	if err != nil {
		return err
	}
	if c.flagOutput != "" {
		settings.Output = strings.ToLower(c.flagOutput)
		if err := settings.validate(); err != nil {
			return err
		}
	}
	c.Settings = settings

	if c.Log == nil {
		logger, flush, err := logging.New(logging.Options{Level: settings.LogLevel, File: settings.LogFile})
		if err != nil {
			return err
		}
		c.Log = logger
		c.closers = append(c.closers, flush)
	}

	if withHistory && settings.HistoryEnabled && !c.flagNoHistory && c.Journal == nil {
		path, err := settings.historyPath()
		if err != nil {
			return err
		}
		service, err := journal.Open(path, c.Log)
		if err != nil {
			// History is best effort, the operation still runs.
			c.Log.Warn("history disabled", zap.Error(err))
		} else {
			c.Journal = service
			c.closers = append(c.closers, func() { _ = service.Close() })
		}
	}
	return nil
}

func (c *Command) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *Command) factory() (*rest.ResourceFactory, error) {
	client, err := rest.NewLexwareRest(c.Settings.ClientConfig(c.Log))
	if err != nil {
		return nil, err
	}
	return rest.NewResourceFactory(client), nil
}

// execute runs one factory operation and records it in the journal.
func (c *Command) execute(ctx context.Context, f *rest.ResourceFactory, rt rest.ResourceType, op rest.Operation, params core.Params) (rest.Result, error) {
	start := time.Now()
	result, err := f.ExecuteOperation(ctx, rt, op, params)
	elapsed := time.Since(start)

	fields := []zap.Field{
		zap.String("resource", string(rt)),
		zap.String("operation", string(op)),
		zap.Duration("duration", elapsed),
	}
	if err != nil {
		c.Log.Warn("operation failed", append(fields, zap.Error(err))...)
	} else {
		c.Log.Info("operation executed", fields...)
	}
	c.record(rt, op, params, result, err, elapsed)
	return result, err
}

func (c *Command) record(rt rest.ResourceType, op rest.Operation, params core.Params, result rest.Result, err error, elapsed time.Duration) {
	if c.Journal == nil {
		return
	}
	entry := &journal.Entry{
		Resource:  string(rt),
		Operation: string(op),
		Params:    paramsForJournal(params),
		Status:    journal.StatusSucceeded,
		Duration:  elapsed,
	}
	switch typed := result.(type) {
	case core.Record:
		entry.RecordID = typed.RecordID()
	case core.RecordSet:
		entry.RecordCount = len(typed)
	}
	if err != nil {
		entry.Status = journal.StatusFailed
		entry.Error = err.Error()
		entry.Category = string(core.CategoryUnknown)
		if apiErr, ok := core.AsApiError(err); ok {
			entry.StatusCode = apiErr.StatusCode
			entry.ErrorCode = apiErr.Code
			entry.Category = string(apiErr.Classification.Category)
		} else if core.IsValidationErr(err) {
			entry.Category = string(core.CategoryValidation)
		} else if core.IsNetworkErr(err) {
			entry.Category = string(core.CategoryConnection)
		}
	}
	_ = c.Journal.Record(entry)
}

// paramsForJournal serializes params without file content.
func paramsForJournal(params core.Params) string {
	if len(params) == 0 {
		return ""
	}
	data, err := json.Marshal(params.Clone("content", "file"))
	if err != nil {
		return ""
	}
	return string(data)
}

// render writes result in the configured output format.
func (c *Command) render(result rest.Result) {
	if result == nil {
		return
	}
	if c.Settings.Output == OutputJSON {
		c.UI.Output(result.PrettyJson("  "))
		return
	}
	c.UI.Output(result.PrettyTable())
}

// reportError prints err with its classification when it came from the API.
func (c *Command) reportError(err error) {
	c.UI.Error(err.Error())
	var unsupported *core.UnsupportedOperationError
	if errors.As(err, &unsupported) {
		return
	}
	if apiErr, ok := core.AsApiError(err); ok {
		cls := apiErr.Classification
		c.UI.Error(fmt.Sprintf("category: %s, severity: %s, retryable: %t", cls.Category, cls.Severity, cls.Retryable))
		if cls.SuggestedAction != "" {
			c.UI.Error("suggested action: " + cls.SuggestedAction)
		}
	}
}

// parseParams merges a JSON object (inline, @file or - for stdin) with key=value pairs.
// Values of pairs are decoded as JSON when they parse, otherwise kept as strings.
func parseParams(jsonArg string, pairs []string, stdin io.Reader) (core.Params, error) {
	params := core.Params{}
	if jsonArg != "" {
		raw, err := readArg(jsonArg, stdin)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("params must be a JSON object: %w", err)
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			params[key] = decoded
		} else {
			params[key] = value
		}
	}
	return params, nil
}

// readArg returns the literal argument, the contents of @file, or stdin for "-".
func readArg(arg string, stdin io.Reader) ([]byte, error) {
	switch {
	case arg == "-":
		if stdin == nil {
			stdin = os.Stdin
		}
		return io.ReadAll(stdin)
	case strings.HasPrefix(arg, "@"):
		return os.ReadFile(strings.TrimPrefix(arg, "@"))
	}
	return []byte(arg), nil
}
