package main

import (
	"fmt"

	"numtree-backend/infrastructure/config"
	"numtree-backend/infrastructure/di"
	"numtree-backend/infrastructure/persistence/dynamodb"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply SQLite migrations or create the DynamoDB table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := di.ProvideLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx := cmd.Context()
		switch cfg.StorageDriver {
		case config.StorageDynamoDB:
			awsCfg, err := di.ProvideAWSConfig(ctx, cfg)
			if err != nil {
				return fmt.Errorf("load aws config: %w", err)
			}
			store := dynamodb.NewStore(di.ProvideDynamoDBClient(awsCfg, cfg), cfg.DynamoDBTable, logger)
			created, err := store.EnsureTable(ctx)
			if err != nil {
				return err
			}
			logger.Info("DynamoDB table ready", zap.String("table", cfg.DynamoDBTable), zap.Bool("created", created))

		default:
			db, err := di.OpenSQLite(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()
			logger.Info("SQLite schema ready", zap.String("path", cfg.DatabasePath))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
