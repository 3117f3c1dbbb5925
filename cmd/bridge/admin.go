package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TemirB/erp-order-bridge/internal/domain"
	"github.com/TemirB/erp-order-bridge/internal/ledger"
	"github.com/TemirB/erp-order-bridge/internal/masterdata"
)

type migrator interface {
	Migrate(ctx context.Context) error
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres ledger and master data tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			var steps []migrator
			if pg, ok := a.ledger.(*ledger.Postgres); ok {
				steps = append(steps, pg)
			}
			if a.cfg.MasterData.Driver == "postgres" {
				steps = append(steps, masterdata.NewPostgres(a.pool, a.cfg.MasterData.Schema))
			}
			if len(steps) == 0 {
				a.logger.Info("nothing to migrate: no component uses postgres")
				return nil
			}
			for _, m := range steps {
				if err := m.Migrate(ctx); err != nil {
					return err
				}
			}
			a.logger.Info("migrations applied", zap.Int("steps", len(steps)))
			return nil
		},
	}
}

func newStatusCommand() *cobra.Command {
	var (
		list  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "status [externalOrderId instanceId]",
		Short: "Show a ledger record, or list records in one status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list == "" && len(args) != 2 {
				return errors.New("need externalOrderId and instanceId, or --list STATUS")
			}
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if list != "" {
				st, err := domain.ParseStatus(list)
				if err != nil {
					return err
				}
				recs, err := a.ledger.List(ctx, st, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd, recs)
			}
			rec, err := a.ledger.GetStatus(ctx, domain.NewOrderKey(args[0], args[1]))
			if err != nil {
				return err
			}
			return printJSON(cmd, rec)
		},
	}
	cmd.Flags().StringVar(&list, "list", "", "list records in this status (e.g. UNCONFIRMED)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum records listed")
	return cmd
}

func newReconcileCommand() *cobra.Command {
	var docID, docNumber int
	cmd := &cobra.Command{
		Use:   "reconcile externalOrderId instanceId",
		Short: "Resolve an UNCONFIRMED record after checking the ERP by hand",
		Long: "With --doc-id and --doc-number the record becomes CREATED.\n" +
			"Without them it becomes FAILED and the order may be submitted again.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idSet, numSet := cmd.Flags().Changed("doc-id"), cmd.Flags().Changed("doc-number")
			if idSet != numSet {
				return errors.New("--doc-id and --doc-number go together")
			}
			var idp, nump *int
			if idSet {
				idp, nump = &docID, &docNumber
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			rec, err := a.ledger.Reconcile(ctx, domain.NewOrderKey(args[0], args[1]), idp, nump)
			if err != nil {
				return err
			}
			a.logger.Info("record reconciled",
				zap.String("key", rec.Key.String()),
				zap.String("status", string(rec.Status)),
			)
			return printJSON(cmd, rec)
		},
	}
	cmd.Flags().IntVar(&docID, "doc-id", 0, "ERP document entry found for the order")
	cmd.Flags().IntVar(&docNumber, "doc-number", 0, "ERP document number found for the order")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
