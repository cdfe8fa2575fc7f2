package container

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"lumina-face-analysis/internal/analysis"
	"lumina-face-analysis/internal/config"
	"lumina-face-analysis/internal/encoder"
	"lumina-face-analysis/internal/factory"
	"lumina-face-analysis/internal/logger"
	"lumina-face-analysis/internal/observer"
	"lumina-face-analysis/internal/repository"
	"lumina-face-analysis/internal/service"
	"lumina-face-analysis/internal/transport"
	"lumina-face-analysis/internal/worker"
	"lumina-face-analysis/internal/workflow"
	"lumina-face-analysis/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	client          analysis.Client
	pool            *worker.Pool
	publisher       *observer.EventPublisher
	metrics         *observer.MetricsObserver
	sessions        repository.SessionRepository
	imageRepository repository.ImageRepository
	sessionService  service.SessionService
	handler         http.Handler
}

// NewContainer builds the dependency graph from cfg
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory(cfg)

	client, err := components.ClientFactory.CreateClient(ctx, factory.ProviderType(cfg.AnalysisProvider))
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis client: %w", err)
	}
	blobs, err := components.StorageFactory.CreateBlobStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to create blob storage: %w", err)
	}

	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	pool := worker.NewPool(cfg.AnalysisWorkers)
	pool.Start()

	failurePolicy := workflow.DiscardImage
	if cfg.RetainImageOnFailure {
		failurePolicy = workflow.RetainImage
	}

	imageRepository := repository.NewSourceImageRepository(
		components.StorageFactory.CreateFetcher(),
		blobs,
		validation.NewURLValidatorWithRules(validation.URLRules{
			Schemes: []string{"http", "https"},
			Hosts:   cfg.AllowedImageHosts,
		}),
	)
	sessions := repository.NewMemorySessionRepository()
	sessionService := service.NewSessionService(sessions, imageRepository, workflow.Dependencies{
		Policy:        validation.NewUploadPolicy(),
		Encoder:       encoder.New(validation.MaxUploadBytes),
		Client:        client,
		Executor:      pool,
		Publisher:     publisher,
		FailurePolicy: failurePolicy,
	}, service.Options{
		AccessCode: cfg.AccessCode,
		MaxWait:    cfg.AwaitTimeout,
	})

	c := &Container{
		config:          cfg,
		client:          client,
		pool:            pool,
		publisher:       publisher,
		metrics:         metrics,
		sessions:        sessions,
		imageRepository: imageRepository,
		sessionService:  sessionService,
	}
	c.handler = transport.NewHandler(sessionService, c.Metrics, cfg)

	logger.WithField("provider", client.Name()).
		WithField("workers", cfg.AnalysisWorkers).
		WithField("failure_policy", failurePolicy.String()).
		WithField("azure", blobs != nil).
		Info("Container initialised")
	return c, nil
}

// Metrics merges workflow counters with worker pool statistics
func (c *Container) Metrics() map[string]interface{} {
	m := c.metrics.GetMetrics()
	m["workers"] = c.pool.GetStats()
	m["active_sessions"] = c.sessions.Count(context.Background())
	return m
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close stops accepting analyses, waits for in-flight ones and releases the
// analysis client
func (c *Container) Close() error {
	c.pool.Close()
	c.pool.Wait()
	c.publisher.Wait()
	if closer, ok := c.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
