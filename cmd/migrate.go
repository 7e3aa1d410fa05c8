package cmd

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/amc-site/internal/web/content/service"
	"github.com/Laisky/amc-site/library/log"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "migrate",
	Long: `move portfolio configuration singletons into portfolioConfig
and fold flat portfolio label fields into details`,
	Args: gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		dryRun := gconfig.Shared.GetBool("dry-run")
		report, err := migratePortfolio(ctx, dryRun)
		if err != nil {
			log.Logger.Panic("migrate", zap.Error(err))
		}

		log.Logger.Info("portfolio migrated",
			zap.Bool("dry_run", dryRun),
			zap.Strings("moved_singletons", report.MovedSingletons),
			zap.Strings("folded_items", report.FoldedItems))
	},
}

func init() {
	migrateCMD.Flags().Bool("dry-run", false, "report what would change without writing")
	rootCMD.AddCommand(migrateCMD)
}

// migratePortfolio opens the configured store and runs the portfolio migration on it.
func migratePortfolio(ctx context.Context, dryRun bool) (*service.MigrationReport, error) {
	logger := log.Logger.Named("migrate").With(zap.Bool("dry_run", dryRun))

	store, err := openStore(ctx, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open content store")
	}
	defer func() {
		if err := store.Close(ctx); err != nil {
			logger.Warn("close content store", zap.Error(err))
		}
	}()

	report, err := service.New(logger, store).MigratePortfolio(ctx, dryRun)
	if err != nil {
		return nil, errors.Wrap(err, "migrate portfolio")
	}

	return report, nil
}
