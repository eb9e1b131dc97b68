/*
main.go - Application entry point

PURPOSE:
  Runs the payroll command tree. All behavior lives in the cli package;
  this file only translates a command error into an exit code.

EXAMPLES:
  # One-shot batch
  ./payroll process nomina_enero.xlsx -o variables_enero.xlsx

  # Batch with site-specific reference data, saving the run
  ./payroll process nomina.xlsx --tables ./config/tables.json --db ./data/payroll.db

  # HTTP API for the review UI
  ./payroll serve --config ./config/config.yaml

SEE ALSO:
  - cli/root.go: command wiring
  - config/config.go: file/env configuration
*/
package main

import (
	"os"

	"github.com/clinsuite/payroll-engine/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
