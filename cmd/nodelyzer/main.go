package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/nodelyzer/pkg/analysis"
	"github.com/dd0wney/nodelyzer/pkg/config"
	"github.com/dd0wney/nodelyzer/pkg/logging"
	"github.com/dd0wney/nodelyzer/pkg/nodes"
	"github.com/dd0wney/nodelyzer/pkg/parser"
	"github.com/dd0wney/nodelyzer/pkg/report"
	"github.com/dd0wney/nodelyzer/pkg/source"
)

const usage = `usage: nodelyzer <command> [flags]

commands:
  analyze   run the analysis pipeline over a node dump
  detect    print the network a dump belongs to
  parse     print the normalized node records of a dump
  report    print the report bundle of an analysis

run 'nodelyzer <command> -h' for flags`

// errUsage marks errors caused by bad invocation
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

type options struct {
	file     string
	network  string
	scenario string
	targets  string
	format   string
	name     string
	verbose  bool
}

func (o options) targetList() []string {
	var out []string
	for _, t := range strings.Split(o.targets, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseFlags(command string, args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.StringVar(&o.file, "file", "", "dump location: local path, http(s):// URL or s3://bucket/key")
	fs.StringVar(&o.network, "network", "auto", "bitcoin, ethereum, solana or auto")
	fs.StringVar(&o.scenario, "scenario", "none", "failure scenario: none, region, cloud, 51")
	fs.StringVar(&o.targets, "targets", "", "comma separated countries or providers to fail")
	fs.StringVar(&o.format, "format", "text", "output format: text, json or yaml")
	fs.StringVar(&o.name, "name", "", "report title (report only)")
	fs.BoolVar(&o.verbose, "v", false, "log pipeline diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		return o, fmt.Errorf("%w: %v", errUsage, err)
	}
	// flag stops at the first positional argument; flags after the
	// location are parsed in a second pass
	for rest := fs.Args(); len(rest) > 0; rest = fs.Args() {
		if o.file != "" {
			return o, fmt.Errorf("%w: unexpected argument %q", errUsage, rest[0])
		}
		o.file = rest[0]
		if err := fs.Parse(rest[1:]); err != nil {
			return o, fmt.Errorf("%w: %v", errUsage, err)
		}
	}
	if o.file == "" {
		return o, fmt.Errorf("%w: -file is required", errUsage)
	}
	switch o.format {
	case "text", "json", "yaml":
	default:
		return o, fmt.Errorf("%w: unknown format %q", errUsage, o.format)
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	command := args[0]
	switch command {
	case "analyze", "detect", "parse", "report":
	case "-h", "--help", "help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	opts, err := parseFlags(command, args[1:])
	if err != nil {
		return err
	}

	cfg, err := config.Load(os.Getenv("NODELYZER_CONFIG"))
	if err != nil {
		return err
	}
	var logger logging.Logger = logging.NewNopLogger()
	if opts.verbose {
		logger = logging.NewJSONLogger(os.Stderr, logging.DebugLevel)
	}
	ctx = logging.WithContext(ctx, logger)

	raw, fileName, err := source.New(source.OptionsFrom(cfg.Source)).Load(ctx, opts.file)
	if err != nil {
		return err
	}

	svc := analysis.NewService(analysis.Config{Logger: logger, Thresholds: cfg.Advisor})

	switch command {
	case "detect":
		network, rule := parser.DetectWithRule(raw, fileName)
		return emit(stdout, opts.format, map[string]string{"network": network.String(), "rule": rule}, func() string {
			return renderDetect(network, rule)
		})

	case "parse":
		ds, err := svc.Load(ctx, opts.network, fileName, raw)
		if err != nil && analysis.KindOf(err) != analysis.KindNoNodes {
			return err
		}
		parsed, network := nodes.ParseResult{}, nodes.Network(opts.network)
		if ds != nil {
			parsed, network = ds.Parsed, ds.Network
		}
		return emit(stdout, opts.format, parsed, func() string {
			return renderParse(network, parsed)
		})

	case "report":
		result, err := svc.Run(ctx, analysis.Request{
			Network: opts.network, FileName: fileName, Raw: raw,
			Scenario: opts.scenario, Targets: opts.targetList(),
		})
		if err != nil {
			return err
		}
		name := opts.name
		if name == "" {
			name = fileName
		}
		format := opts.format
		if format == "text" {
			format = "yaml"
		}
		f, err := report.ParseFormat(format)
		if err != nil {
			return err
		}
		return report.Build(name, result).Encode(stdout, f)

	default:
		result, err := svc.Run(ctx, analysis.Request{
			Network: opts.network, FileName: fileName, Raw: raw,
			Scenario: opts.scenario, Targets: opts.targetList(),
		})
		if err != nil {
			return err
		}
		return emit(stdout, opts.format, result, func() string {
			return renderAnalysis(fileName, result)
		})
	}
}

// emit writes v as json or yaml, or the text rendering
func emit(w io.Writer, format string, v any, text func() string) error {
	switch format {
	case "json":
		return writeJSON(w, v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, text())
		return err
	}
}
