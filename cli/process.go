package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clinsuite/payroll-engine/export"
	"github.com/clinsuite/payroll-engine/ingest"
	"github.com/clinsuite/payroll-engine/store/sqlite"
)

var (
	processOutput string
	processTables string
	processDB     string
)

var processCmd = &cobra.Command{
	Use:   "process <workbook.xlsx>",
	Short: "Process a personnel workbook into the liquidation workbook",
	Long: `Reads the personnel workbook, interprets each employee's schedule,
evaluates the payroll rules and writes the three-column liquidation
workbook (LEGAJO, CODIGO VARIABLE, VALOR). Rows that fail validation
are reported on stderr and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processOutput, "output", "o", "variables.xlsx",
		"output workbook path")
	processCmd.Flags().StringVar(&processTables, "tables", "",
		"reference-data JSON file (default: built-in tables)")
	processCmd.Flags().StringVar(&processDB, "db", "",
		"also save the run to this SQLite database")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	w, err := buildWiring(processTables)
	if err != nil {
		return err
	}
	defer w.log.Sync()

	inputPath := args[0]
	records, invalid, err := ingest.NewReader(w.parser, w.log).ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inputPath, err)
	}
	for _, e := range invalid {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %v\n", e)
	}

	result, err := w.processor.Process(cmd.Context(), records)
	if err != nil {
		return err
	}

	if err := export.NewWriter(w.log).WriteFile(processOutput, result.Variables); err != nil {
		return err
	}

	if processDB != "" {
		store, err := sqlite.New(processDB)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer store.Close()
		run, err := store.SaveRun(cmd.Context(), inputPath, result)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run saved: %s\n", run.ID)
	}

	w.log.Info("batch written",
		zap.String("output", processOutput),
		zap.Int("employees", result.Stats.Processed),
		zap.Int("variables", result.Stats.VariablesEmitted))

	fmt.Fprintf(cmd.OutOrStdout(),
		"%d/%d employees processed, %d variables, %d schedules not interpreted, %d rows skipped\n",
		result.Stats.Processed, result.Stats.Total,
		result.Stats.VariablesEmitted, result.Stats.ParseErrors,
		result.Stats.ValidationErrors+len(invalid))
	return nil
}
