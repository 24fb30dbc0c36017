package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/heartaxis"
	"github.com/aretw0/heartaxis/internal/adapters/file"
	"github.com/aretw0/heartaxis/internal/config"
	"github.com/aretw0/heartaxis/internal/metrics"
	httpadapter "github.com/aretw0/heartaxis/pkg/adapters/http"
	"github.com/aretw0/heartaxis/pkg/adapters/memory"
	mqttadapter "github.com/aretw0/heartaxis/pkg/adapters/mqtt"
	redisadapter "github.com/aretw0/heartaxis/pkg/adapters/redis"
	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/aretw0/heartaxis/pkg/persistence/middleware"
	"github.com/aretw0/heartaxis/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// mqttConnectTimeout bounds the broker handshake at startup.
const mqttConnectTimeout = 5 * time.Second

// Runtime bundles the service with the infrastructure built for it.
type Runtime struct {
	Service  *heartaxis.Service
	Streams  *httpadapter.StreamManager
	Registry *prometheus.Registry
	Logger   *slog.Logger

	closers []func() error
}

// Close releases connections opened by Build, in reverse order.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildOption toggles optional parts of the runtime.
type BuildOption func(*buildOptions)

type buildOptions struct {
	streams bool
	metrics bool
}

// WithLiveStreams publishes outcomes to SSE and WebSocket subscribers.
func WithLiveStreams() BuildOption {
	return func(o *buildOptions) { o.streams = true }
}

// WithMetrics registers Prometheus collectors for every outcome.
func WithMetrics() BuildOption {
	return func(o *buildOptions) { o.metrics = true }
}

// Build wires the service from the configuration: store backend, optional
// distributed lock, MQTT publisher, live streams and metrics.
func Build(cfg config.Config, logger *slog.Logger, opts ...BuildOption) (*Runtime, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}

	rt := &Runtime{Logger: logger}
	svcOpts := []heartaxis.Option{
		heartaxis.WithSettings(cfg.Settings),
		heartaxis.WithDisplay(cfg.Display),
		heartaxis.WithLogger(logger),
	}

	store, locker, err := rt.buildStore(cfg.Store)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if cfg.Store.Encryption.Enabled() {
		active, fallback, err := cfg.Store.Encryption.Keys()
		if err != nil {
			rt.Close()
			return nil, err
		}
		store = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})(store)
		logger.Debug("Session readings are encrypted at rest")
	}
	svcOpts = append(svcOpts, heartaxis.WithStore(store))
	if locker != nil {
		svcOpts = append(svcOpts, heartaxis.WithLocker(locker))
	}

	if cfg.MQTT.Broker != "" {
		client, err := mqttadapter.Connect(cfg.MQTT.Broker, cfg.MQTT.ClientID, mqttConnectTimeout)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, func() error {
			client.Disconnect(250)
			return nil
		})
		svcOpts = append(svcOpts, heartaxis.WithPublisher(mqttadapter.NewPublisher(client,
			mqttadapter.WithTopic(cfg.MQTT.Topic),
			mqttadapter.WithQoS(cfg.MQTT.QoS),
		)))
		logger.Info("Publishing outcomes over MQTT", "broker", cfg.MQTT.Broker, "topic", cfg.MQTT.Topic)
	}

	if bo.streams {
		rt.Streams = httpadapter.NewStreamManager(logger)
		svcOpts = append(svcOpts, heartaxis.WithPublisher(rt.Streams))
	}

	hooks := heartaxis.Hooks{
		OnSessionEnd: func(sessionID string) {
			logger.Info("Session ended", "session_id", sessionID)
		},
	}
	if bo.metrics {
		rt.Registry = prometheus.NewRegistry()
		rt.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector := metrics.NewCollector(rt.Registry)
		hooks.OnOutcome = func(sessionID string, o domain.Outcome) {
			collector.Observe(o)
		}
	}
	svcOpts = append(svcOpts, heartaxis.WithHooks(hooks))

	rt.Service = heartaxis.New(svcOpts...)
	return rt, nil
}

func (rt *Runtime) buildStore(cfg config.StoreConfig) (ports.SessionStore, ports.DistributedLocker, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil
	case config.BackendFile, "":
		return file.New(cfg.Dir), nil, nil
	case config.BackendRedis:
		storeOpts := []redisadapter.Option{}
		if cfg.Redis.Prefix != "" {
			storeOpts = append(storeOpts, redisadapter.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			storeOpts = append(storeOpts, redisadapter.WithTTL(cfg.Redis.TTL))
		}
		store := redisadapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, storeOpts...)
		rt.closers = append(rt.closers, store.Close)

		var locker ports.DistributedLocker
		if cfg.Redis.Lock {
			prefix := cfg.Redis.Prefix
			if prefix == "" {
				prefix = redisadapter.DefaultPrefix
			}
			locker = redisadapter.NewLocker(store.Client(), prefix)
		}
		return store, locker, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
