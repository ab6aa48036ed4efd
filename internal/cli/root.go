package cli

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/hr-letter-api/pkg/config"
	"github.com/noah-isme/hr-letter-api/pkg/database"
	"github.com/noah-isme/hr-letter-api/pkg/logger"
)

// RootCmd builds the letterctl command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "letterctl",
		Short: "Operate the HR letter portal",
		Long: `letterctl runs schema migrations, mints development tokens
and lets HR review letter requests from the terminal.`,
		SilenceUsage: true,
	}
	root.AddCommand(MigrateCmd())
	root.AddCommand(TokenCmd())
	root.AddCommand(RequestsCmd())
	return root
}

type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sqlx.DB
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &runtime{cfg: cfg, logger: logr, db: db}, nil
}

func (r *runtime) Close() {
	_ = r.db.Close()
	_ = r.logger.Sync()
}
