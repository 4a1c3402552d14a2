package store_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-doctemplate/pkg/catalog"
	"github.com/goliatone/go-doctemplate/pkg/store"
)

const remoteCatalog = `{"templates":{"lease-standard":{"en":{"title":"Remote Lease","content":"<p>REMOTE {{landlord_name}}</p>"}}}}`

func TestTemplate_RemoteFailureFallsBackToLocalEnglish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	svc := newService(t, store.WithRemoteURL(srv.URL), store.WithHTTPClient(srv.Client()), store.WithLogger(zap.New(core)))

	res := svc.Template(context.Background(), "lease-standard", "de")
	if !res.OK() {
		t.Fatalf("expected template from local catalog")
	}
	if res.Origin != store.OriginLocalFallback {
		t.Fatalf("expected local-fallback origin, got %s", res.Origin)
	}
	if res.Template.Language != "en" || res.Template.Title != "Residential Lease Agreement" {
		t.Fatalf("expected English local content, got %#v", res.Template)
	}
	if logs.FilterMessage("remote template fetch failed, falling back to local catalog").Len() != 1 {
		t.Fatalf("expected fallback to be logged, got %v", logs.All())
	}
}

func TestTemplate_RemoteHitIsCached(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(remoteCatalog))
	}))
	defer srv.Close()

	svc := newService(t, store.WithRemoteURL(srv.URL), store.WithHTTPClient(srv.Client()))

	for i := 0; i < 3; i++ {
		res := svc.Template(context.Background(), "lease-standard", "en")
		if res.Origin != store.OriginRemote {
			t.Fatalf("expected remote origin, got %s", res.Origin)
		}
		if !strings.Contains(res.Template.Content, "REMOTE") {
			t.Fatalf("unexpected content %q", res.Template.Content)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected a single remote fetch, got %d", got)
	}

	svc.Clear()
	if svc.Cached() != 0 {
		t.Fatalf("expected empty cache after Clear")
	}
	svc.Template(context.Background(), "lease-standard", "en")
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("expected refetch after Clear, got %d fetches", got)
	}
}

func TestTemplate_MissingRemoteEntryUsesLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(remoteCatalog))
	}))
	defer srv.Close()

	svc := newService(t, store.WithRemoteURL(srv.URL), store.WithHTTPClient(srv.Client()))

	res := svc.Template(context.Background(), "lease-standard", "es")
	if res.Origin != store.OriginLocal || res.Template.Language != "es" {
		t.Fatalf("expected local es template, got %s / %s", res.Origin, res.Template.Language)
	}

	res = svc.Template(context.Background(), "pet-addendum", "es-MX")
	if res.Origin != store.OriginLocalVariant {
		t.Fatalf("expected language variant, got %s", res.Origin)
	}
	if !strings.Contains(res.Template.Content, "Anexo de Mascotas") {
		t.Fatalf("unexpected variant content %q", res.Template.Content)
	}
}

func TestTemplate_TimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	svc := newService(t,
		store.WithRemoteURL(srv.URL),
		store.WithHTTPClient(srv.Client()),
		store.WithTimeout(50*time.Millisecond),
	)

	res := svc.Template(context.Background(), "commercial-lease", "en")
	if res.Origin != store.OriginLocal {
		t.Fatalf("expected local origin after timeout, got %s", res.Origin)
	}
}

func TestTemplate_ConcurrentRequestsShareOneFetch(t *testing.T) {
	var hits int32
	gate := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-gate
		_, _ = w.Write([]byte(remoteCatalog))
	}))
	defer srv.Close()

	svc := newService(t, store.WithRemoteURL(srv.URL), store.WithHTTPClient(srv.Client()))

	const callers = 8
	results := make([]store.Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = svc.Template(context.Background(), "lease-standard", "en")
		}(i)
	}

	time.Sleep(100 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected one in-flight fetch, got %d", got)
	}
	for i, res := range results {
		if res.Origin != store.OriginRemote {
			t.Fatalf("caller %d: expected remote origin, got %s", i, res.Origin)
		}
	}
}

func TestNew_ResolvesRemoteOnce(t *testing.T) {
	var calls int32
	resolver := store.ResolverFunc(func(context.Context) (store.RemoteConfig, error) {
		atomic.AddInt32(&calls, 1)
		return store.RemoteConfig{}, nil
	})

	svc := newService(t, store.WithRemoteResolver(resolver))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Init(context.Background())
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected resolver to run once, got %d", got)
	}
	if svc.Remote().Enabled() {
		t.Fatalf("remote should be disabled")
	}
}

func TestNew_ResolverErrorKeepsLocal(t *testing.T) {
	resolver := store.ResolverFunc(func(context.Context) (store.RemoteConfig, error) {
		return store.RemoteConfig{}, errors.New("config endpoint down")
	})
	svc := newService(t, store.WithRemoteResolver(resolver))

	if res := svc.Template(context.Background(), "lease-standard", "en"); res.Origin != store.OriginLocal {
		t.Fatalf("expected local origin, got %s", res.Origin)
	}
}

func TestTemplate_UnavailableIsNotCached(t *testing.T) {
	svc := newService(t)

	res := svc.Template(context.Background(), "eviction-notice", "fr")
	if res.OK() || res.Origin != store.OriginNone {
		t.Fatalf("expected unavailable result, got %#v", res)
	}
	if svc.Template(context.Background(), "  ", "en").OK() {
		t.Fatalf("blank id must be unavailable")
	}
	if svc.Cached() != 0 {
		t.Fatalf("unavailable templates must not be cached")
	}
}

func TestNew_LocalCatalogOverride(t *testing.T) {
	cat, err := catalog.Decode([]byte(`{"templates":{"custom":{"en":{"title":"Custom","content":"<p>{{tenant_name}}</p>"}}}}`), "inline")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	svc := newService(t, store.WithLocalCatalog(cat))

	if !svc.Template(context.Background(), "custom", "en").OK() {
		t.Fatalf("expected custom template")
	}
	if svc.Template(context.Background(), "lease-standard", "en").OK() {
		t.Fatalf("bundled catalog should be replaced")
	}
	if got := len(svc.Templates("en")); got != 1 {
		t.Fatalf("expected one summary, got %d", got)
	}
}

func TestTemplate_ResultIsolatedFromCache(t *testing.T) {
	svc := newService(t)
	first := svc.Template(context.Background(), "lease-standard", "en")
	first.Template.Sections["parties"] = "mutated"

	second := svc.Template(context.Background(), "lease-standard", "en")
	if second.Template.Sections["parties"] != "Parties" {
		t.Fatalf("cached template was mutated through a result")
	}
}

func TestTemplate_RemoteRetriedAfterFailure(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			http.Error(w, "unavailable", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(remoteCatalog))
	}))
	defer srv.Close()

	svc := newService(t, store.WithRemoteURL(srv.URL), store.WithHTTPClient(srv.Client()))

	if res := svc.Template(context.Background(), "lease-standard", "en"); res.Origin != store.OriginLocal {
		t.Fatalf("expected local origin while remote fails, got %s", res.Origin)
	}
	if svc.Cached() != 0 {
		t.Fatalf("local fallbacks must not be cached")
	}
	if res := svc.Template(context.Background(), "lease-standard", "en"); res.Origin != store.OriginRemote {
		t.Fatalf("expected remote origin once it recovers, got %s", res.Origin)
	}
	if svc.Cached() != 1 {
		t.Fatalf("expected remote hit to be cached")
	}
}

func TestTemplate_CancelledCallerDoesNotForceFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(remoteCatalog))
	}))
	defer srv.Close()

	svc := newService(t, store.WithRemoteURL(srv.URL), store.WithHTTPClient(srv.Client()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if res := svc.Template(ctx, "lease-standard", "en"); res.Origin != store.OriginRemote {
		t.Fatalf("cancelled caller should still get the shared remote fetch, got %s", res.Origin)
	}
	if res := svc.Template(context.Background(), "lease-standard", "en"); res.Origin != store.OriginRemote {
		t.Fatalf("expected remote origin for later callers, got %s", res.Origin)
	}
}

func TestTemplate_RemoteLanguageVariant(t *testing.T) {
	payload := `{"templates":{"lease-standard":{"en":{"title":"Remote Lease","content":"<p>REMOTE {{landlord_name}}</p>","languageVariants":{"fr":"<p>BAIL {{landlord_name}}</p>"}}}}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	svc := newService(t, store.WithRemoteURL(srv.URL), store.WithHTTPClient(srv.Client()))

	res := svc.Template(context.Background(), "lease-standard", "fr")
	if res.Origin != store.OriginRemote || res.Template.Language != "fr" {
		t.Fatalf("expected remote fr variant, got %s / %s", res.Origin, res.Template.Language)
	}
	if !strings.Contains(res.Template.Content, "BAIL") {
		t.Fatalf("unexpected variant content %q", res.Template.Content)
	}
}

func newService(t *testing.T, options ...store.Option) *store.Service {
	t.Helper()
	svc, err := store.New(context.Background(), options...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}
