// Command server runs the fixture data service.
//
// Usage:
//
//	fixture-data-service                     # same as serve
//	fixture-data-service serve
//	fixture-data-service fetch --date 2025-06-15 --all --tz Europe/London
//	fixture-data-service classify --date 2025-06-15 --ref 2025-06-14
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	appfixtures "github.com/preston-bernstein/fixture-data-service/internal/app/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/config"
	"github.com/preston-bernstein/fixture-data-service/internal/logging"
	"github.com/preston-bernstein/fixture-data-service/internal/metrics"
	"github.com/preston-bernstein/fixture-data-service/internal/server"
	"github.com/preston-bernstein/fixture-data-service/internal/timeutil"
)

const (
	appVersion  = "dev"
	serviceName = "fixture-data-service"
)

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          serviceName,
		Short:        "Football fixture aggregation service",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(fetchCmd(out))
	root.AddCommand(classifyCmd(out))
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service with the live reconciler",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg, logger)
	if err != nil {
		logging.Error(logger, "server setup failed", err)
		return err
	}
	srv.Run(ctx, stop)
	return nil
}

func fetchCmd(out io.Writer) *cobra.Command {
	var (
		date string
		all  bool
		tz   string
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run the fetch pipeline once for a date and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), out, date, appfixtures.Query{All: all}, tz)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date to fetch (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&all, "all", false, "Keep the neighbouring days of the window")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA timezone for date filtering")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func classifyCmd(out io.Writer) *cobra.Command {
	var (
		date string
		ref  string
		tz   string
	)
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Fetch a date and print each fixture with its classification",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ref != "" {
				if _, err := timeutil.ParseDate(ref); err != nil {
					return errors.Wrapf(err, "invalid --ref %q", ref)
				}
			}
			return runOnce(cmd.Context(), out, date, appfixtures.Query{Classify: true, Reference: ref}, tz)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date to fetch (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ref, "ref", "", "Reference date for labels (defaults to today)")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA timezone for date filtering")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

// runOnce wires the pipeline without the HTTP surface, answers one date query, and prints it.
func runOnce(ctx context.Context, out io.Writer, date string, q appfixtures.Query, tz string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := loadConfig(os.Stderr)
	if err != nil {
		return err
	}
	loc, ok := timeutil.ResolveLocation(tz, cfg.Location())
	if !ok {
		return errors.Newf("unknown timezone %q", tz)
	}
	q.Location = loc

	comps, err := server.BuildComponents(ctx, cfg, logger, metrics.NewRecorder(), nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := comps.Close(); cerr != nil {
			logging.Warn(logger, "cache backend close failed", "err", cerr)
		}
	}()

	res, err := comps.Service.ByDate(ctx, date, q)
	if err != nil {
		return err
	}
	payload, err := sonic.ConfigStd.MarshalIndent(res, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode result")
	}
	_, err = out.Write(append(payload, '\n'))
	return err
}

func loadConfig(logOut io.Writer) (config.Config, *slog.Logger, error) {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: serviceName,
		Version: appVersion,
		Output:  logOut,
	})
	return cfg, logger, nil
}
