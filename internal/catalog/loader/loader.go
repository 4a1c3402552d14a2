package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-doctemplate/pkg/catalog"
)

// DefaultTimeout bounds remote catalog fetches.
const DefaultTimeout = 5 * time.Second

// Options configures the Loader strategies.
type Options struct {
	// FileSystem backs SourceKindFS sources; defaults to the bundled catalog.
	FileSystem fs.FS
	// HTTPClient is used for SourceKindURL sources. Nil disables HTTP unless
	// AllowHTTP is set, in which case a default client is created.
	HTTPClient *http.Client
	AllowHTTP  bool
	// Timeout caps each remote fetch; zero means DefaultTimeout.
	Timeout time.Duration
	// Headers are added to every remote request.
	Headers http.Header
}

// Loader implements catalog.Loader by delegating to file, fs.FS, or HTTP
// strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	headers   http.Header
}

var _ catalog.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options Options) *Loader {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		httpClient = &clone
	case options.AllowHTTP:
		httpClient = &http.Client{}
	}

	files := options.FileSystem
	if files == nil {
		files = catalog.BundledFS()
	}

	return &Loader{
		fs:        files,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
		headers:   options.Headers.Clone(),
	}
}

// Timeout reports the effective per-request timeout.
func (l *Loader) Timeout() time.Duration {
	return l.timeout
}

// Load fetches the raw payload for src.
func (l *Loader) Load(ctx context.Context, src catalog.Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("catalog loader: source is nil")
	}

	switch src.Kind() {
	case catalog.SourceKindFile:
		return loadFile(ctx, src.Location())
	case catalog.SourceKindFS:
		return loadFromFS(ctx, l.fs, src.Location())
	case catalog.SourceKindURL:
		if !l.allowHTTP {
			return nil, errors.New("catalog loader: http support disabled")
		}
		return loadHTTP(ctx, l.http, src.Location(), l.timeout, l.headers)
	default:
		return nil, errors.New("catalog loader: unsupported source kind")
	}
}
