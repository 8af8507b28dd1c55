package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidcheck/internal/deps"
	"vidcheck/internal/preflight"
)

type depsReport struct {
	Binaries  []deps.Status      `json:"binaries"`
	Preflight []preflight.Result `json:"preflight"`
}

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external tools, directories, the verdict store and the oracle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := depsReport{Binaries: deps.CheckBinaries(deps.Requirements(cfg))}
			if !skipPreflight {
				report.Preflight = preflight.RunAll(cmd.Context(), cfg)
			}

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printDepsReport(cmd, report)
			}

			missing := deps.MissingRequired(report.Binaries)
			failed := preflight.Failed(report.Preflight)
			switch {
			case len(missing) > 0:
				return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
			case len(failed) > 0:
				names := make([]string, 0, len(failed))
				for _, r := range failed {
					names = append(names, r.Name)
				}
				return fmt.Errorf("preflight failed: %s", strings.Join(names, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Only check external binaries")
	return cmd
}

func printDepsReport(cmd *cobra.Command, report depsReport) {
	p := newPrinter(cmd.OutOrStdout())

	rows := make([][]string, 0, len(report.Binaries))
	for _, bin := range report.Binaries {
		state, detail := "ok", bin.Path
		if !bin.Available {
			state, detail = "missing", bin.Detail
			if bin.Optional {
				state = "missing (optional)"
			}
		}
		rows = append(rows, []string{bin.Name, bin.Command, state, detail})
	}
	p.table([]string{"Tool", "Command", "Status", "Detail"}, rows)

	if len(report.Preflight) == 0 {
		return
	}
	p.section("Preflight")
	for _, result := range report.Preflight {
		t := toneGood
		if !result.Passed {
			t = toneBad
		}
		p.status(result.Name, t, result.Detail)
	}
}
