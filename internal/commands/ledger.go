package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
)

func (a *app) newSeedChartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-chart",
		Short: "Create the missing accounts of the default chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) error {
				created, err := svc.Account.SeedDefaultChart(ctx, a.userID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d accounts created\n", created)
				return nil
			})
		},
	}
}

type balanceInput struct {
	Code string `validate:"required"`
	AsOf string `validate:"omitempty,datetime=2006-01-02"`
}

func (a *app) newBalanceCommand() *cobra.Command {
	var in balanceInput

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Print the natural-sign balance of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.check(in); err != nil {
				return err
			}
			asOf, err := dto.ParseOptionalDate(in.AsOf)
			if err != nil {
				return err
			}
			return a.withServices(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) error {
				balance, err := svc.Ledger.AccountBalanceByCode(ctx, in.Code, asOf)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", in.Code, balance.StringFixed(2))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Code, "code", "", "account code (required)")
	_ = cmd.MarkFlagRequired("code")
	cmd.Flags().StringVar(&in.AsOf, "as-of", "", "inclusive cut-off date, YYYY-MM-DD")

	return cmd
}

func (a *app) newPeriodCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Close or reopen accounting periods",
	}
	cmd.AddCommand(
		a.newPeriodActionCommand("close", "Close a period so it rejects postings", portssvc.PeriodSvcFacade.ClosePeriod),
		a.newPeriodActionCommand("reopen", "Reopen the most recently closed period", portssvc.PeriodSvcFacade.ReopenPeriod),
	)
	return cmd
}

type periodAction func(svc portssvc.PeriodSvcFacade, ctx context.Context, periodID, userID string) (*domain.AccountingPeriod, error)

func (a *app) newPeriodActionCommand(use, short string, action periodAction) *cobra.Command {
	var periodID string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd, func(ctx context.Context, svc *portssvc.ServiceContainer) error {
				period, err := action(svc.Period, ctx, periodID, a.userID)
				if err != nil {
					return err
				}
				return printJSON(cmd, period)
			})
		},
	}

	cmd.Flags().StringVar(&periodID, "id", "", "period id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
