package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-flock/internal/config"
	"github.com/lao-tseu-is-alive/go-flock/internal/driver"
	"github.com/lao-tseu-is-alive/go-flock/internal/viewer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type options struct {
	configFile  string
	schemaFile  string
	headless    bool
	ticks       int
	seed        uint64
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "flock",
		Short: "Run flocks of boids in a scene tree",
		Long: `flock spawns the flocks described by the configuration under the root of a
scene tree and steps them with Reynolds' rules, in a window or headless.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "configuration file (.json, .yaml); defaults apply when empty")
	f.StringVar(&opts.schemaFile, "schema", "", "JSON Schema for the configuration; the embedded one when empty")
	f.BoolVar(&opts.headless, "headless", false, "step without a window")
	f.IntVar(&opts.ticks, "ticks", 0, "stop after this many ticks in headless mode, 0 runs until interrupted")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed for the spawn positions, 0 picks one")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	return cmd
}

func loadConfig(opts *options) (*config.Config, error) {
	if opts.configFile == "" {
		return config.Default(), nil
	}
	return config.Load(opts.configFile, opts.schemaFile)
}

func run(ctx context.Context, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := cfg.Logger()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Actor system
	system, err := actor.NewActorSystem("FlockWorld", actor.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return fmt.Errorf("starting actor system: %w", err)
	}
	defer func() { _ = system.Stop(context.Background()) }()

	// 2. Scene and metrics
	seed := opts.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	sim, err := driver.NewSimulation(cfg, rand.New(rand.NewPCG(seed, seed>>1)), logger)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := driver.NewMetrics(reg)
	if opts.metricsAddr != "" {
		srv := serveMetrics(opts.metricsAddr, reg, logger)
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	// 3. Tick actor, then either loop
	var snapshotCh chan *driver.Snapshot
	if !opts.headless {
		snapshotCh = make(chan *driver.Snapshot, 10) // Buffer to avoid blocking
	}
	pid, err := system.Spawn(ctx, "ticker", driver.NewTickActor(sim, metrics, snapshotCh))
	if err != nil {
		return fmt.Errorf("spawning tick actor: %w", err)
	}
	logger.Infof("spawned %d flocks of %d boids (seed %d, %s)", cfg.NumFlocks, cfg.BoidsPerFlock, seed, cfg.UpdateMode)

	if opts.headless {
		return runHeadless(ctx, cfg, pid, opts.ticks, logger)
	}
	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Flocks")
	ebiten.SetTPS(cfg.TicksPerSecond)
	return ebiten.RunGame(viewer.NewGame(ctx, cfg, pid, snapshotCh, logger))
}

func serveMetrics(addr string, reg *prometheus.Registry, logger log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server: %v", err)
		}
	}()
	logger.Infof("serving metrics on %s/metrics", addr)
	return srv
}

// runHeadless sends one tick per frame interval until ticks ticks were sent
// or ctx is cancelled, then reports how many the actor processed.
func runHeadless(ctx context.Context, cfg *config.Config, pid *actor.PID, ticks int, logger log.Logger) error {
	interval := time.Second / time.Duration(cfg.TicksPerSecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sent := 0
loop:
	for ticks <= 0 || sent < ticks {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			if err := actor.Tell(ctx, pid, durationpb.New(interval)); err != nil {
				return fmt.Errorf("tick: %w", err)
			}
			sent++
		}
	}

	askCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reply, err := actor.Ask(askCtx, pid, &emptypb.Empty{}, 5*time.Second)
	if err != nil {
		return fmt.Errorf("querying tick count: %w", err)
	}
	done, ok := reply.(*wrapperspb.UInt64Value)
	if !ok {
		return fmt.Errorf("unexpected reply %T", reply)
	}
	logger.Infof("headless run finished after %d ticks", done.GetValue())
	return nil
}
