// Package daemon wires a startup config into a running controller:
// kinematic tree, task manager, tick loop, command surface, visualizer
// sink, and monitoring stream, coordinated under one cancellable
// lifetime. Both cmd/hqpikd and cmd/hqpikctl's serve subcommand call
// Run to start the same daemon.
package daemon

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taskstack/hqpik/internal/cmdsurface"
	"github.com/taskstack/hqpik/internal/config"
	"github.com/taskstack/hqpik/internal/kinchain"
	"github.com/taskstack/hqpik/internal/manager"
	"github.com/taskstack/hqpik/internal/monitor"
	"github.com/taskstack/hqpik/internal/oracle"
	"github.com/taskstack/hqpik/internal/solver"
	"github.com/taskstack/hqpik/internal/visualizer"
)

// Run loads configPath, builds the controller it describes, and blocks
// until SIGINT/SIGTERM or a component error ends the run.
func Run(configPath string) error {
	loader := config.NewLoader(configPath)
	resolved, err := loader.Load()
	if err != nil {
		return err
	}

	tree, err := kinchain.ParseDescription([]byte(resolved.RobotDescription))
	if err != nil {
		return err
	}

	live := NewLiveState(tree)
	vizServer := visualizer.NewServer()

	var mgr *manager.Manager
	onPrimitiveChange := func() {
		if mgr != nil {
			vizServer.Publish(mgr.Snapshot())
		}
	}
	onPrimitiveRemove := func(string) { onPrimitiveChange() }

	orc := buildOracle(resolved.OracleEndpoint)
	slv := solver.NewDefaultAdapter(resolved.DLSEta)
	slv.Epsilon = resolved.ActiveRowEpsilon
	slv.Tolerance = resolved.InfeasibilityTolerance
	mgr = manager.New(tree, tree.DOF(), slv, orc, onPrimitiveChange, onPrimitiveRemove)

	if err := applyPreloads(mgr, resolved, live.Snapshot()); err != nil {
		return err
	}
	vizServer.Publish(mgr.Snapshot())

	pub := monitor.NewPublisher()
	pub.RegisterOn(vizServer.GRPCServer())
	monDriver := monitor.NewDriver(mgr.MonitorRecords(), pub, resolved.MonitoringPublishRate)

	cmdServer := cmdsurface.NewServer(mgr, live)

	loader.OnReload(func(r config.Resolved) {
		if err := applyPreloads(mgr, r, live.Snapshot()); err != nil {
			log.Printf("[daemon] config reload: %v", err)
			return
		}
		vizServer.Publish(mgr.Snapshot())
	})
	if err := loader.Watch(); err != nil {
		return err
	}

	tickInterval := 10 * time.Millisecond
	if resolved.TickInterval != "" {
		d, err := time.ParseDuration(resolved.TickInterval)
		if err != nil {
			return err
		}
		tickInterval = d
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return runTickLoop(gctx, mgr, vizServer, live, tickInterval) })

	if resolved.MonitoringActive {
		g.Go(func() error { return monDriver.Run(gctx) })
	}

	g.Go(func() error {
		err := vizServer.Serve(resolved.VisualizerListenAddr)
		if gctx.Err() != nil {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		vizServer.Stop()
		return nil
	})

	g.Go(func() error {
		err := cmdServer.Serve(resolved.CommandSurfaceAddr)
		if gctx.Err() != nil {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return cmdServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	log.Printf("[daemon] shutdown complete")
	return nil
}

func buildOracle(endpoint string) oracle.Oracle {
	if endpoint == "" {
		return oracle.Fixed{}
	}
	return oracle.NewHTTP(endpoint)
}

// runTickLoop drives the control cycle at interval: tick the manager
// against the live state, integrate the commanded velocities forward,
// and publish an updated visualizer snapshot (task lifecycle flags
// can change between ticks via the command surface even when no
// primitive mutation fires the onPrimitiveChange hook).
func runTickLoop(ctx context.Context, mgr *manager.Manager, vizServer *visualizer.Server, live *LiveState, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			st := live.CurrentState()
			u, ok, err := mgr.Tick(st, now)
			if err != nil {
				log.Printf("[daemon] tick: %v", err)
				continue
			}
			if !ok {
				log.Printf("[daemon] tick: infeasible, holding position")
			}
			live.Integrate(u, now)
			vizServer.Publish(mgr.Snapshot())
		}
	}
}
