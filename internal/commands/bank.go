package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
)

type importStatementInput struct {
	BankAccountID string `validate:"required"`
	File          string `validate:"required,file"`
}

func (a *app) newImportStatementCommand() *cobra.Command {
	var in importStatementInput

	cmd := &cobra.Command{
		Use:   "import-statement",
		Short: "Import a delimited bank statement file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.check(in); err != nil {
				return err
			}
			raw, err := os.ReadFile(in.File)
			if err != nil {
				return fmt.Errorf("reading statement: %w", err)
			}
			return a.withServices(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) error {
				res, err := svc.Statement.ImportStatement(ctx, in.BankAccountID, string(raw), a.userID)
				if err != nil {
					return err
				}
				a.logger.Info("Statement imported", slog.String("batch_id", res.BatchID),
					slog.Int("imported", res.Imported), slog.Int("skipped", res.Skipped))
				return printJSON(cmd, res)
			})
		},
	}

	cmd.Flags().StringVar(&in.BankAccountID, "bank-account", "", "bank account id (required)")
	_ = cmd.MarkFlagRequired("bank-account")
	cmd.Flags().StringVar(&in.File, "file", "", "statement file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (a *app) newReconcileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run bank reconciliation",
	}
	cmd.AddCommand(a.newReconcileStartCommand(), a.newReconcileSummaryCommand())
	return cmd
}

type reconcileStartInput struct {
	BankAccountID string `validate:"required"`
	From          string `validate:"required,datetime=2006-01-02"`
	To            string `validate:"required,datetime=2006-01-02"`
}

func (a *app) newReconcileStartCommand() *cobra.Command {
	var in reconcileStartInput

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a run and store the match proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.check(in); err != nil {
				return err
			}
			return a.withServices(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) error {
				run, err := svc.Reconciliation.StartRun(ctx, dto.StartRunRequest{
					BankAccountID: in.BankAccountID,
					PeriodFrom:    in.From,
					PeriodTo:      in.To,
				}, a.userID)
				if err != nil {
					return err
				}
				return printJSON(cmd, run)
			})
		},
	}

	cmd.Flags().StringVar(&in.BankAccountID, "bank-account", "", "bank account id (required)")
	_ = cmd.MarkFlagRequired("bank-account")
	cmd.Flags().StringVar(&in.From, "from", "", "first statement date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&in.To, "to", "", "last statement date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (a *app) newReconcileSummaryCommand() *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print counts and balances of a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) error {
				summary, err := svc.Reconciliation.RunSummary(ctx, runID)
				if err != nil {
					return err
				}
				return printJSON(cmd, summary)
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "run id (required)")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}
