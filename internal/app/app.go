package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/samvad-hq/postboard/internal/config"
	"github.com/samvad-hq/postboard/internal/logger"
	"github.com/samvad-hq/postboard/pkg/httpclient"
	"github.com/samvad-hq/postboard/pkg/posts"
	"github.com/samvad-hq/postboard/pkg/publishers"
)

// App wires the HTTP client, the posts API, the event sinks and the Board.
type App struct {
	cfg      *config.Config
	client   *httpclient.Client
	fanout   *publishers.Fanout
	registry *prometheus.Registry
	log      logger.Logger

	API   *posts.API
	Board *Board
}

// Option customises New.
type Option func(*options)

type options struct {
	transport httpclient.Transport
	registry  *prometheus.Registry
	pubReg    publishers.Registry
}

// WithTransport replaces the resty transport.
func WithTransport(t httpclient.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithRegistry collects request metrics into reg.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithPublisherRegistry replaces the builders used for the publishers file.
func WithPublisherRegistry(reg publishers.Registry) Option {
	return func(o *options) { o.pubReg = reg }
}

// New builds the runtime from cfg.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}
	if o.pubReg == nil {
		o.pubReg = publishers.DefaultRegistry()
	}
	if o.transport == nil {
		tcfg := httpclient.TransportConfig{
			RequestTimeout:  cfg.RequestTimeout,
			ResourceTimeout: cfg.ResourceTimeout,
		}
		if logger.S != nil {
			tcfg.Logger = logger.S
		}
		o.transport = httpclient.NewRestyTransport(tcfg)
	}

	metrics, err := httpclient.NewMetrics(o.registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, o.pubReg, enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.DebugObj("publishers registry loaded", "publishers_meta", map[string]any{
		"file":       cfg.PublishersFile,
		"count":      len(summaries),
		"publishers": summaries,
	})

	client := httpclient.New(o.transport,
		httpclient.WithLogger(log),
		httpclient.WithMetrics(metrics),
	)
	api := posts.NewAPI(client, cfg.APIBaseURL)
	board := NewBoard(api, fanout, log, BoardConfig{
		UserID:         cfg.DefaultUserID,
		PublishTimeout: cfg.PublishTimeout,
	})

	return &App{
		cfg:      cfg,
		client:   client,
		fanout:   fanout,
		registry: o.registry,
		log:      log,
		API:      api,
		Board:    board,
	}, nil
}

// BoardFor returns a fresh board scoped to userID that shares this app's client and sinks.
// An empty userID falls back to the configured default.
func (a *App) BoardFor(userID string) *Board {
	if userID = strings.TrimSpace(userID); userID == "" {
		return a.Board
	}
	return NewBoard(a.API, a.fanout, a.log, BoardConfig{
		UserID:         userID,
		PublishTimeout: a.cfg.PublishTimeout,
	})
}

// Close drains pending callbacks and releases sink clients.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	a.client.Close()
	if err := a.fanout.Close(); err != nil {
		return fmt.Errorf("close publishers: %w", err)
	}
	return nil
}

// RequestSummary returns request counts keyed by "METHOD outcome".
func (a *App) RequestSummary() (map[string]float64, error) {
	families, err := a.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	out := make(map[string]float64)
	for _, mf := range families {
		if mf.GetName() != httpclient.RequestsMetricName {
			continue
		}
		for _, m := range mf.GetMetric() {
			var method, outcome string
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case "method":
					method = lp.GetValue()
				case "outcome":
					outcome = lp.GetValue()
				}
			}
			out[method+" "+outcome] += m.GetCounter().GetValue()
		}
	}
	return out, nil
}

// SummaryKeys returns the keys of a RequestSummary in a stable order.
func SummaryKeys(summary map[string]float64) []string {
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Wait blocks until ch resolves or ctx ends. The request itself is not cancelled.
func Wait(ctx context.Context, ch <-chan error) error {
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return fmt.Errorf("wait for request: %w", ctx.Err())
	}
}
