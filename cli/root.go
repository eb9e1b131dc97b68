/*
Package cli implements the payroll command tree.

PURPOSE:
  Two ways to run the engine: `payroll process` for the one-shot
  workbook-in, workbook-out batch the liquidation team runs each cycle,
  and `payroll serve` for the HTTP API behind the review UI. Both share
  the same configuration, reference tables and wiring.

SEE ALSO:
  - process.go: the batch command
  - serve.go: the API server command
  - config/config.go: file/env configuration
*/
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clinsuite/payroll-engine/config"
	"github.com/clinsuite/payroll-engine/factory"
	"github.com/clinsuite/payroll-engine/logging"
	"github.com/clinsuite/payroll-engine/payroll"
	"github.com/clinsuite/payroll-engine/pipeline"
	"github.com/clinsuite/payroll-engine/schedule"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Liquidation variable engine",
	Long: `Reads personnel workbooks, interprets free-text schedules and emits
the liquidation variables per employee. Run 'process' for a one-shot
batch or 'serve' for the HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "",
		"config file (default: ./config/config.yaml if present)")
}

// wiring bundles the shared dependency graph.
type wiring struct {
	cfg       *config.Config
	log       *zap.Logger
	parser    *schedule.Parser
	engine    *payroll.Engine
	processor *pipeline.Processor
}

// buildWiring loads configuration and assembles parser, engine and
// processor. tablesPath overrides the configured reference-data file
// when non-empty.
func buildWiring(tablesPath string) (*wiring, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	if tablesPath == "" {
		tablesPath = cfg.Engine.TablesPath
	}
	tables, vocab, err := factory.LoadFile(tablesPath)
	if err != nil {
		return nil, fmt.Errorf("load reference tables: %w", err)
	}

	parser := schedule.NewParser(vocab)
	engine := payroll.NewEngine(tables, log)
	return &wiring{
		cfg:       cfg,
		log:       log,
		parser:    parser,
		engine:    engine,
		processor: pipeline.New(parser, engine, log),
	}, nil
}
