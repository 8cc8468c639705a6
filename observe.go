package canister

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// LoggingMiddleware logs every resolution and autowire at debug level, and
// failures at warn level.
func LoggingMiddleware(log *zap.Logger) Middleware {
	return &FuncMiddleware{
		AfterResolveFunc: func(ctx context.Context, id string, instance any, err error) error {
			if err != nil {
				log.Warn("resolution failed", zap.String("interface", id), zap.Error(err))
				return nil
			}

			log.Debug("resolved interface", zap.String("interface", id))

			return nil
		},
		AfterAutowireFunc: func(ctx context.Context, typeName string, instance any, err error) error {
			if err != nil {
				log.Warn("autowire failed", zap.String("type", typeName), zap.Error(err))
				return nil
			}

			log.Debug("autowired type", zap.String("type", typeName))

			return nil
		},
	}
}

// Metrics counts resolutions and autowires by outcome.
type Metrics struct {
	resolutions *prometheus.CounterVec
	autowires   *prometheus.CounterVec
}

// NewMetrics creates the container metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "canister",
				Name:      "resolutions_total",
				Help:      "Total number of interface resolutions.",
			},
			[]string{"interface", "outcome"},
		),
		autowires: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "canister",
				Name:      "autowires_total",
				Help:      "Total number of autowire constructions.",
			},
			[]string{"type", "outcome"},
		),
	}

	for _, collector := range []prometheus.Collector{m.resolutions, m.autowires} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Middleware returns the middleware that records the metrics.
func (m *Metrics) Middleware() Middleware {
	return &FuncMiddleware{
		AfterResolveFunc: func(ctx context.Context, id string, instance any, err error) error {
			m.resolutions.WithLabelValues(id, outcome(err)).Inc()
			return nil
		},
		AfterAutowireFunc: func(ctx context.Context, typeName string, instance any, err error) error {
			m.autowires.WithLabelValues(typeName, outcome(err)).Inc()
			return nil
		},
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}
