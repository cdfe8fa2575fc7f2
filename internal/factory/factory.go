package factory

import (
	"context"
	"fmt"

	"lumina-face-analysis/internal/analysis"
	"lumina-face-analysis/internal/analysis/gemini"
	"lumina-face-analysis/internal/analysis/openai"
	"lumina-face-analysis/internal/config"
	"lumina-face-analysis/internal/storage"
	"lumina-face-analysis/pkg/validation"
)

// ProviderType names a remote analysis backend
type ProviderType string

const (
	// GeminiProvider uses Google Gemini
	GeminiProvider ProviderType = config.ProviderGemini
	// OpenAIProvider uses an OpenAI compatible chat completion API
	OpenAIProvider ProviderType = config.ProviderOpenAI
)

// ClientFactory creates analysis clients
type ClientFactory interface {
	CreateClient(ctx context.Context, provider ProviderType) (analysis.Client, error)
}

// StorageFactory creates image sources
type StorageFactory interface {
	CreateFetcher() storage.ImageFetcher
	CreateBlobStorage() (storage.BlobStorage, error)
}

type clientFactory struct {
	cfg *config.Config
}

// NewClientFactory creates a client factory reading credentials from cfg
func NewClientFactory(cfg *config.Config) ClientFactory {
	return &clientFactory{cfg: cfg}
}

// CreateClient creates a client for the given provider
func (f *clientFactory) CreateClient(ctx context.Context, provider ProviderType) (analysis.Client, error) {
	switch provider {
	case GeminiProvider:
		c, err := gemini.New(ctx, f.cfg.GeminiAPIKey, f.cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return c, nil
	case OpenAIProvider:
		c, err := openai.New(f.cfg.OpenAIAPIKey, f.cfg.OpenAIModel, f.cfg.OpenAIBaseURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported analysis provider: %s", provider)
	}
}

type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateFetcher creates the HTTP fetcher. It reads one byte past the upload
// limit so oversized photos are still rejected by the upload policy.
func (f *storageFactory) CreateFetcher() storage.ImageFetcher {
	return storage.NewHTTPImageFetcher(validation.MaxUploadBytes, storage.WithTimeout(f.cfg.ImageFetchTimeout))
}

// CreateBlobStorage returns nil without error when Azure is not configured
func (f *storageFactory) CreateBlobStorage() (storage.BlobStorage, error) {
	if !f.cfg.AzureEnabled() {
		return nil, nil
	}
	return storage.NewAzureStorage(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey)
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	ClientFactory  ClientFactory
	StorageFactory StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		ClientFactory:  NewClientFactory(cfg),
		StorageFactory: NewStorageFactory(cfg),
	}
}
