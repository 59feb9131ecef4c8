package emulator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/micromax/isara-emulator/internal/api/acceptor"
	"github.com/micromax/isara-emulator/internal/api/grpc/health"
	"github.com/micromax/isara-emulator/internal/api/isara"
	"github.com/micromax/isara-emulator/internal/api/overlord"
	"github.com/micromax/isara-emulator/internal/config"
	"github.com/micromax/isara-emulator/internal/device"
	"github.com/micromax/isara-emulator/internal/logger"
	"github.com/micromax/isara-emulator/internal/metrics"
)

const (
	// readHeaderTimeout bounds request header reads on the HTTP endpoints.
	readHeaderTimeout = 5 * time.Second
	// shutdownTimeout bounds the graceful stop of the HTTP endpoints.
	shutdownTimeout = 5 * time.Second
	// metricsPath is where Prometheus metrics are served.
	metricsPath = "/metrics"
)

// Emulator is a device bound to its listeners.
type Emulator struct {
	// device is the emulated sample changer.
	device *device.Device
	// registry holds the collectors served on the metrics endpoint.
	registry *prometheus.Registry
	// metrics records connection and command statistics.
	metrics *metrics.Metrics
	// health reports readiness of each channel.
	health *health.Server

	// Channel listeners. Optional ones are nil when disabled.
	operateLis, monitorLis, overlordLis net.Listener
	wsLis, healthLis, metricsLis        net.Listener
}

// New creates the device described by cfg and binds every enabled endpoint.
// Binding happens here so that callers know the addresses before Run.
func New(ctx context.Context, cfg *config.Config) (*Emulator, error) {
	dev, err := device.New(cfg.Model, device.Options{
		ArmTravelTime:   cfg.ArmTravelTime,
		LidStepInterval: cfg.LidStepInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("create device: %w", err)
	}

	registry, m := metrics.NewRegistry()

	e := &Emulator{
		device:   dev,
		registry: registry,
		metrics:  m,
		health:   health.NewServer(isara.ChannelOperate, isara.ChannelMonitor, overlord.ChannelOverlord),
	}

	for _, endpoint := range []struct {
		lis     *net.Listener
		address string
	}{
		{&e.operateLis, cfg.OperateAddress()},
		{&e.monitorLis, cfg.MonitorAddress()},
		{&e.overlordLis, cfg.OverlordAddress()},
		{&e.wsLis, cfg.OverlordWebSocketAddress},
		{&e.healthLis, cfg.HealthAddress},
		{&e.metricsLis, cfg.MetricsAddress},
	} {
		if endpoint.address == "" {
			continue
		}

		lis, err := acceptor.Listen(ctx, endpoint.address)
		if err != nil {
			e.closeListeners()

			return nil, err
		}

		*endpoint.lis = lis
	}

	return e, nil
}

// Device returns the emulated device.
func (e *Emulator) Device() *device.Device {
	return e.device
}

// OperateAddr returns the bound address of the operate channel.
func (e *Emulator) OperateAddr() string { return addr(e.operateLis) }

// MonitorAddr returns the bound address of the monitor channel.
func (e *Emulator) MonitorAddr() string { return addr(e.monitorLis) }

// OverlordAddr returns the bound address of the overlord side channel.
func (e *Emulator) OverlordAddr() string { return addr(e.overlordLis) }

// WebSocketAddr returns the bound overlord WebSocket address, or "".
func (e *Emulator) WebSocketAddr() string { return addr(e.wsLis) }

// HealthAddr returns the bound health endpoint address, or "".
func (e *Emulator) HealthAddr() string { return addr(e.healthLis) }

// MetricsAddr returns the bound metrics endpoint address, or "".
func (e *Emulator) MetricsAddr() string { return addr(e.metricsLis) }

// Run serves every endpoint until ctx is done or one of them fails.
func (e *Emulator) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		e.device.Run(gctx)

		return nil
	})

	g.Go(func() error {
		return acceptor.Serve(gctx, e.operateLis, isara.ChannelOperate,
			isara.NewHandler(isara.ChannelOperate, e.device.Operate, e.metrics))
	})

	g.Go(func() error {
		return acceptor.Serve(gctx, e.monitorLis, isara.ChannelMonitor,
			isara.NewHandler(isara.ChannelMonitor, e.device.Monitor, e.metrics))
	})

	g.Go(func() error {
		return acceptor.Serve(gctx, e.overlordLis, overlord.ChannelOverlord,
			overlord.NewTCPHandler(device.NewOverlord(e.device), e.metrics))
	})

	if e.wsLis != nil {
		mux := http.NewServeMux()
		mux.Handle(overlord.WebSocketPath, overlord.NewWebSocketHandler(gctx, device.NewOverlord(e.device), e.metrics))

		g.Go(func() error {
			return serveHTTP(gctx, e.wsLis, "overlord-ws", mux)
		})
	}

	if e.metricsLis != nil {
		mux := http.NewServeMux()
		mux.Handle(metricsPath, metrics.Handler(e.registry))

		g.Go(func() error {
			return serveHTTP(gctx, e.metricsLis, "metrics", mux)
		})
	}

	if e.healthLis != nil {
		g.Go(func() error {
			return e.health.Serve(gctx, e.healthLis)
		})
	}

	// Listeners are bound, so every channel accepts connections from here on.
	for _, service := range []string{
		isara.ChannelOperate, isara.ChannelMonitor, overlord.ChannelOverlord, health.ServiceEmulator,
	} {
		e.health.SetServing(service, true)
	}

	logger.InfoKV(ctx, "Emulator running",
		"model", e.device.Model(),
		"operate", e.OperateAddr(),
		"monitor", e.MonitorAddr(),
		"overlord", e.OverlordAddr(),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info(ctx, "Emulator stopped")

	return nil
}

func (e *Emulator) closeListeners() {
	for _, lis := range []net.Listener{
		e.operateLis, e.monitorLis, e.overlordLis, e.wsLis, e.healthLis, e.metricsLis,
	} {
		if lis != nil {
			_ = lis.Close()
		}
	}
}

// serveHTTP serves handler on lis until ctx is done.
func serveHTTP(ctx context.Context, lis net.Listener, name string, handler http.Handler) error {
	ctx = logger.WithName(ctx, name)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.ErrorKV(ctx, "HTTP shutdown failed", "error", err)
		}
	})
	defer stop()

	logger.InfoKV(ctx, "HTTP endpoint listening", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", name, err)
	}

	return nil
}

func addr(lis net.Listener) string {
	if lis == nil {
		return ""
	}

	return lis.Addr().String()
}
