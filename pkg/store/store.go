package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-doctemplate/internal/catalog/loader"
	"github.com/goliatone/go-doctemplate/pkg/catalog"
)

// Origin records which fallback step produced a template.
type Origin string

const (
	OriginRemote        Origin = "remote"
	OriginLocal         Origin = "local"
	OriginLocalVariant  Origin = "local-variant"
	OriginLocalFallback Origin = "local-fallback"
	OriginNone          Origin = "none"
)

// Result is the outcome of a template lookup. A Result with OriginNone means
// the template is unavailable; callers render nothing.
type Result struct {
	Template catalog.Template
	Origin   Origin
}

// OK reports whether a template was found.
func (r Result) OK() bool {
	return r.Origin != "" && r.Origin != OriginNone && r.Template.ID != ""
}

var notFound = Result{Origin: OriginNone}

// Service resolves templates by (id, language) with the fallback order
// remote -> local -> local language variant -> local English -> none. It is
// built once at start-up and shared; all methods are safe for concurrent use.
type Service struct {
	loader     catalog.Loader
	resolver   RemoteResolver
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger

	local    catalog.Catalog
	localSet bool
	localSrc catalog.Source

	initOnce  sync.Once
	remote    RemoteConfig
	remoteSrc catalog.Source

	mu    sync.RWMutex
	cache map[string]Result

	group singleflight.Group
}

// New builds a ready-to-use Service: options are applied, the fallback
// catalog is decoded and the remote configuration is resolved. A failing
// remote resolution only disables the remote step; an unreadable fallback
// catalog is a configuration error.
func New(ctx context.Context, options ...Option) (*Service, error) {
	s := &Service{
		logger: zap.NewNop(),
		cache:  make(map[string]Result),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if s.loader == nil {
		s.loader = loader.New(loader.Options{
			HTTPClient: s.httpClient,
			AllowHTTP:  true,
			Timeout:    s.timeout,
		})
	}

	if err := s.loadLocal(ctx); err != nil {
		return nil, err
	}

	s.Init(ctx)
	return s, nil
}

// Init resolves the remote configuration. It runs the resolver at most once;
// concurrent callers wait for the first resolution.
func (s *Service) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		if s.resolver == nil {
			return
		}
		cfg, err := s.resolver.Resolve(ctx)
		if err != nil {
			s.logger.Warn("remote template store unavailable, using local catalog", zap.Error(err))
			return
		}
		if !cfg.Enabled() {
			return
		}
		src, err := catalog.SourceFromURL(cfg.URL)
		if err != nil {
			s.logger.Warn("remote template store misconfigured, using local catalog", zap.Error(err))
			return
		}
		s.remote = cfg
		s.remoteSrc = src
	})
}

// Remote returns the resolved remote configuration.
func (s *Service) Remote() RemoteConfig {
	s.Init(context.Background())
	return s.remote
}

// Template returns the template for (id, lang). It never fails; an
// unavailable template is reported through Result.OK. Only remote hits are
// cached.
func (s *Service) Template(ctx context.Context, id, lang string) Result {
	id = strings.TrimSpace(id)
	if id == "" {
		return notFound
	}
	lang = catalog.NormalizeLanguage(lang)
	key := catalog.Key(id, lang)

	if res, ok := s.cached(key); ok {
		return res
	}

	// The fetch is shared by every waiter on key, so it must not inherit the
	// first caller's cancellation. The loader timeout still bounds it.
	shared := context.WithoutCancel(ctx)
	value, _, _ := s.group.Do(key, func() (any, error) {
		if res, ok := s.cached(key); ok {
			return res, nil
		}
		res := s.resolve(shared, id, lang)
		// Local fallbacks are not cached so the remote is retried next time.
		if res.Origin == OriginRemote {
			s.mu.Lock()
			s.cache[key] = res
			s.mu.Unlock()
		}
		return res, nil
	})

	res, ok := value.(Result)
	if !ok {
		return notFound
	}
	res.Template = res.Template.Clone()
	return res
}

// Templates lists the templates of the local catalog.
func (s *Service) Templates(lang string) []catalog.Summary {
	return s.local.Summaries(lang)
}

// Clear drops every cached template.
func (s *Service) Clear() {
	s.mu.Lock()
	s.cache = make(map[string]Result)
	s.mu.Unlock()
}

// Cached reports how many templates are cached.
func (s *Service) Cached() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

func (s *Service) cached(key string) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.cache[key]
	if !ok {
		return Result{}, false
	}
	res.Template = res.Template.Clone()
	return res, true
}

type step func(ctx context.Context, id, lang string) (Result, bool)

func (s *Service) resolve(ctx context.Context, id, lang string) Result {
	steps := []step{
		s.fromRemote,
		s.fromLocal,
		s.fromLocalVariant,
		s.fromLocalEnglish,
	}
	for _, next := range steps {
		if res, ok := next(ctx, id, lang); ok {
			return res
		}
	}
	s.logger.Warn("template unavailable",
		zap.String("template", id),
		zap.String("language", lang),
	)
	return notFound
}

func (s *Service) fromRemote(ctx context.Context, id, lang string) (Result, bool) {
	s.Init(ctx)
	if s.remoteSrc == nil {
		return Result{}, false
	}

	data, err := s.loader.Load(ctx, s.remoteSrc)
	if err != nil {
		s.logger.Warn("remote template fetch failed, falling back to local catalog",
			zap.String("template", id),
			zap.String("language", lang),
			zap.Error(err),
		)
		return Result{}, false
	}
	cat, err := catalog.Decode(data, s.remoteSrc.Location())
	if err != nil {
		s.logger.Warn("remote template catalog invalid, falling back to local catalog",
			zap.String("template", id),
			zap.Error(err),
		)
		return Result{}, false
	}
	tpl, ok := cat.Lookup(id, lang)
	if !ok {
		tpl, ok = cat.Variant(id, lang)
	}
	if !ok {
		s.logger.Debug("template missing from remote catalog",
			zap.String("template", id),
			zap.String("language", lang),
		)
		return Result{}, false
	}
	return Result{Template: tpl, Origin: OriginRemote}, true
}

func (s *Service) fromLocal(_ context.Context, id, lang string) (Result, bool) {
	tpl, ok := s.local.Lookup(id, lang)
	if !ok {
		return Result{}, false
	}
	return Result{Template: tpl, Origin: OriginLocal}, true
}

func (s *Service) fromLocalVariant(_ context.Context, id, lang string) (Result, bool) {
	tpl, ok := s.local.Variant(id, lang)
	if !ok {
		return Result{}, false
	}
	return Result{Template: tpl, Origin: OriginLocalVariant}, true
}

func (s *Service) fromLocalEnglish(_ context.Context, id, lang string) (Result, bool) {
	if lang == catalog.DefaultLanguage {
		return Result{}, false
	}
	tpl, ok := s.local.Lookup(id, catalog.DefaultLanguage)
	if !ok {
		return Result{}, false
	}
	return Result{Template: tpl, Origin: OriginLocalFallback}, true
}

func (s *Service) loadLocal(ctx context.Context) error {
	if s.localSet {
		return nil
	}
	if s.localSrc == nil {
		cat, err := catalog.Bundled()
		if err != nil {
			return fmt.Errorf("store: decode bundled catalog: %w", err)
		}
		s.local = cat
		return nil
	}

	data, err := s.loader.Load(ctx, s.localSrc)
	if err != nil {
		return fmt.Errorf("store: read local catalog %s: %w", s.localSrc.Location(), err)
	}
	cat, err := catalog.Decode(data, s.localSrc.Location())
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if cat.Len() == 0 {
		return errors.New("store: local catalog is empty")
	}
	s.local = cat
	return nil
}
