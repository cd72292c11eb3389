package cli

import (
	"github.com/litetable/litetable-scan/internal/app"
	"github.com/litetable/litetable-scan/internal/iterators"
	"github.com/litetable/litetable-scan/internal/reaper"
	"github.com/litetable/litetable-scan/internal/security"
	"github.com/litetable/litetable-scan/internal/server"
	grpcserver "github.com/litetable/litetable-scan/internal/server/grpc"
	"github.com/litetable/litetable-scan/internal/tablet"
	"github.com/spf13/cobra"
	"time"
)

const stopTimeout = 5 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run a tablet server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := initialize(opts)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}
}

// initialize wires the tablet server's dependencies in start order.
func initialize(opts *options) (*app.App, error) {
	cfg := opts.cfg.Server
	var deps []app.Dependency

	auth, err := security.NewAuthenticator(&security.Config{Users: cfg.Users})
	if err != nil {
		return nil, err
	}

	registry := iterators.NewRegistry()
	manager, err := tablet.New(&tablet.Config{
		DataDir:       cfg.DataDir,
		Registry:      registry,
		Authenticator: auth,
		Tables:        cfg.Tables,
		SessionTTL:    cfg.SessionTTL,
		MaxExamined:   cfg.MaxExamined,
		MaxBatchSize:  cfg.MaxBatchSize,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, manager)

	reaperGC, err := reaper.New(&reaper.Config{
		Compactor: manager,
		Interval:  cfg.ReaperInterval,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, reaperGC)

	grpcSrv, err := grpcserver.NewServer(&grpcserver.Config{
		Address: cfg.Address,
		Port:    cfg.Port,
		Scanner: manager,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, grpcSrv)

	adminSrv, err := server.New(&server.Config{
		Address:  cfg.Address,
		Port:     cfg.AdminPort,
		Registry: registry,
		Tables:   manager,
		Reaper:   reaperGC,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, adminSrv)

	return app.CreateApp(&app.Config{
		ServiceName: "Tablet Scan Server",
		StopTimeout: stopTimeout,
	}, deps...)
}
