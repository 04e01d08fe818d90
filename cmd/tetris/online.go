package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tui-tetris/internal/metrics"
	"github.com/vovakirdan/tui-tetris/internal/netplay"
	"github.com/vovakirdan/tui-tetris/internal/platform/tui"
	"github.com/vovakirdan/tui-tetris/internal/room"
)

var (
	flagPort        int
	flagMetricsAddr string
	flagName        string
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Host a networked lobby",
	Long: `Listen for other instances and open the lobby. Everybody who joins sees
the same room; the host starts the match once enough players are seated.

Examples:
  tetris host
  tetris host --port 9000 --name alice
  tetris host --metrics :2112`,
	Args: cobra.NoArgs,
	RunE: runHost,
}

var joinCmd = &cobra.Command{
	Use:   "join <addr>",
	Short: "Join a networked lobby",
	Long: `Connect to a hosting instance and take a seat in its lobby.

Examples:
  tetris join 192.168.1.20:7777
  tetris join localhost:9000 --name bob`,
	Args: cobra.ExactArgs(1),
	RunE: runJoin,
}

func init() {
	hostCmd.Flags().IntVar(&flagPort, "port", 0, "TCP port to listen on (default from config)")
	hostCmd.Flags().StringVar(&flagMetricsAddr, "metrics", "", "Serve Prometheus metrics on this address")
	for _, c := range []*cobra.Command{hostCmd, joinCmd} {
		c.Flags().StringVar(&flagName, "name", "", "Player name (default from config)")
	}
}

func runHost(cmd *cobra.Command, _ []string) error {
	return runOnline(cmd.Context(), func(ctx context.Context, opts netplay.Options) (*netplay.Network, error) {
		return netplay.Host(ctx, net.JoinHostPort("", strconv.Itoa(flagPort)), opts)
	})
}

func runJoin(cmd *cobra.Command, args []string) error {
	addr := args[0]
	return runOnline(cmd.Context(), func(ctx context.Context, opts netplay.Options) (*netplay.Network, error) {
		return netplay.Join(ctx, addr, opts)
	})
}

type connectFunc func(ctx context.Context, opts netplay.Options) (*netplay.Network, error)

// runOnline connects, seats the local player and runs the lobby next to the
// optional metrics endpoint.
func runOnline(parent context.Context, connect connectFunc) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagPort == 0 {
		flagPort = cfg.Network.Port
	}
	mode, err := lobbyMode(cfg)
	if err != nil {
		return err
	}

	logger, closeLog, err := openLog()
	if err != nil {
		return err
	}
	defer closeLog()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	network, err := connect(ctx, netplay.Options{
		WriteTimeout: cfg.Network.WriteTimeout,
		Logger:       logger,
		Metrics:      m,
	})
	if err != nil {
		return err
	}
	defer network.Close()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	rt := runtimeConfig()
	driver, err := newDriver(cfg, rt, mode, driverDeps{
		Transport: network,
		Logger:    logger,
		Metrics:   m,
		Store:     store,
	})
	if err != nil {
		return err
	}
	driver.Submit(room.AddPlayerCmd(tui.LocalPlayer(cfg, 0, flagName)))

	status := "connected to the host"
	if network.Role() == netplay.RoleHost {
		status = fmt.Sprintf("hosting on %s", network.Addr())
	}
	opts := tui.Options{
		Config:  cfg,
		Runtime: rt,
		Driver:  driver,
		Store:   store,
		Logger:  logger,
		Status:  status,
	}

	g, gctx := errgroup.WithContext(ctx)
	if flagMetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(gctx, flagMetricsAddr, reg, logger)
		})
	}
	opts.Context = gctx
	g.Go(func() error {
		defer cancel()
		return tui.Run(opts)
	})
	return g.Wait()
}
