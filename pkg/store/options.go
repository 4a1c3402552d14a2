package store

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-doctemplate/pkg/catalog"
)

// RemoteConfig describes the remote template store once resolved.
type RemoteConfig struct {
	URL string
}

// Enabled reports whether a remote store is configured.
func (c RemoteConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

// RemoteResolver decides whether a remote store is configured. It runs once
// per Service.
type RemoteResolver interface {
	Resolve(ctx context.Context) (RemoteConfig, error)
}

// ResolverFunc adapts a function to RemoteResolver.
type ResolverFunc func(ctx context.Context) (RemoteConfig, error)

// Resolve implements RemoteResolver.
func (f ResolverFunc) Resolve(ctx context.Context) (RemoteConfig, error) {
	return f(ctx)
}

// StaticResolver always resolves to the supplied URL.
func StaticResolver(url string) RemoteResolver {
	return ResolverFunc(func(context.Context) (RemoteConfig, error) {
		return RemoteConfig{URL: strings.TrimSpace(url)}, nil
	})
}

// Option customises the Service.
type Option func(*Service)

// WithRemoteURL configures a static remote catalog URL.
func WithRemoteURL(url string) Option {
	return func(s *Service) {
		s.resolver = StaticResolver(url)
	}
}

// WithRemoteResolver injects a custom remote configuration resolver.
func WithRemoteResolver(resolver RemoteResolver) Option {
	return func(s *Service) {
		if resolver != nil {
			s.resolver = resolver
		}
	}
}

// WithLoader injects the loader used for remote and local sources.
func WithLoader(loader catalog.Loader) Option {
	return func(s *Service) {
		s.loader = loader
	}
}

// WithHTTPClient sets the client used by the default loader.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.httpClient = client
	}
}

// WithTimeout overrides the remote fetch timeout of the default loader.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.timeout = timeout
	}
}

// WithLocalCatalog replaces the bundled fallback catalog.
func WithLocalCatalog(cat catalog.Catalog) Option {
	return func(s *Service) {
		s.local = cat
		s.localSet = true
	}
}

// WithLocalSource reads the fallback catalog from src during New.
func WithLocalSource(src catalog.Source) Option {
	return func(s *Service) {
		s.localSrc = src
	}
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
