package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"finfinance/internal/analysis"
	"finfinance/internal/backend"
	"finfinance/internal/cli"
	"finfinance/internal/config"
	applog "finfinance/internal/log"
	"finfinance/internal/services"
)

type app struct {
	svc *services.FinanceService
	out io.Writer
	now func() time.Time
}

// newRootCmd builds the command tree. A nil service is opened from the
// environment before each command runs.
func newRootCmd(svc *services.FinanceService, out io.Writer) *cobra.Command {
	a := &app{svc: svc, out: out, now: time.Now}

	root := &cobra.Command{
		Use:           "finctl",
		Short:         "Inspect the monthly finance analysis from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.svc != nil {
				return nil
			}
			return a.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.svc == nil {
				return nil
			}
			return a.svc.Close()
		},
	}

	root.AddCommand(a.analyzeCmd())
	root.AddCommand(a.dashboardCmd())
	root.AddCommand(a.historyCmd())
	root.AddCommand(a.alertsCmd())
	root.AddCommand(a.targetsCmd())
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	cli.SetupLogger(cfg, applog.ComponentCLI)

	engine, err := cli.NewEngine(cfg)
	if err != nil {
		return err
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(nil).CreateBackend(cmd.Context(), bcfg)
	if err != nil {
		return err
	}
	a.svc = services.NewFinanceService(res.Store, engine)
	return nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// periodFlags registers --year and --month, defaulting to the current month.
func (a *app) periodFlags(cmd *cobra.Command) func() (int, int) {
	var year, month int
	cmd.Flags().IntVar(&year, "year", 0, "year to analyse (default: current)")
	cmd.Flags().IntVar(&month, "month", 0, "month to analyse, 1-12 (default: current)")
	return func() (int, int) {
		cur := analysis.CurrentPeriod(a.now())
		y, m := year, month
		if !cmd.Flags().Changed("year") {
			y = cur.Year
		}
		if !cmd.Flags().Changed("month") {
			m = cur.Month
		}
		return y, m
	}
}

func (a *app) analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score a month and print tips, strengths and the diagnosis",
	}
	period := a.periodFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		y, m := period()
		res, err := a.svc.Analysis(cmd.Context(), y, m)
		if err != nil {
			return err
		}
		return a.print(res)
	}
	return cmd
}

func (a *app) dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the monthly overview (regenerates alerts)",
	}
	period := a.periodFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		y, m := period()
		d, err := a.svc.Dashboard(cmd.Context(), y, m)
		if err != nil {
			return err
		}
		return a.print(d)
	}
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	var months int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print monthly totals ending at the current month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.svc.History(cmd.Context(), months)
			if err != nil {
				return err
			}
			return a.print(h)
		},
	}
	cmd.Flags().IntVar(&months, "months", 11, "number of months before the current one")
	return cmd
}

func (a *app) alertsCmd() *cobra.Command {
	var generate bool
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List unread alerts",
	}
	period := a.periodFlags(cmd)
	cmd.Flags().BoolVar(&generate, "generate", false, "regenerate alerts for the period first")
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if generate {
			y, m := period()
			if _, err := a.svc.GenerateAlerts(cmd.Context(), y, m); err != nil {
				return fmt.Errorf("generate alerts: %w", err)
			}
		}
		alerts, err := a.svc.ListAlerts(cmd.Context())
		if err != nil {
			return err
		}
		return a.print(alerts)
	}
	return cmd
}

func (a *app) targetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "Print the budget target of every category",
		RunE: func(*cobra.Command, []string) error {
			return a.print(a.svc.Engine().Targets())
		},
	}
}
