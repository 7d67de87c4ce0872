package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/nodelyzer/pkg/analysis"
	"github.com/dd0wney/nodelyzer/pkg/config"
	"github.com/dd0wney/nodelyzer/pkg/source"
)

func main() {
	network := flag.String("network", "auto", "bitcoin, ethereum, solana or auto")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: nodelyzer-tui [-network name] <dump location>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *network); err != nil {
		fmt.Fprintf(os.Stderr, "nodelyzer-tui: %v\n", err)
		os.Exit(1)
	}
}

func run(location, network string) error {
	cfg, err := config.Load(os.Getenv("NODELYZER_CONFIG"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Source.Timeout+5*time.Second)
	defer cancel()
	raw, fileName, err := source.New(source.OptionsFrom(cfg.Source)).Load(ctx, location)
	if err != nil {
		return err
	}

	svc := analysis.NewService(analysis.Config{Thresholds: cfg.Advisor})
	ds, err := svc.Load(ctx, network, fileName, raw)
	if err != nil {
		return err
	}

	m, err := newModel(svc, ds, fileName)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
