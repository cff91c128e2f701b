package editor

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hiernet/pkg/cache"
	"github.com/matzehuels/hiernet/pkg/errors"
	hio "github.com/matzehuels/hiernet/pkg/io"
	"github.com/matzehuels/hiernet/pkg/network"
	"github.com/matzehuels/hiernet/pkg/render"
	"github.com/matzehuels/hiernet/pkg/render/nodelink"
	"github.com/matzehuels/hiernet/pkg/store"
)

// DefaultRenderTTL is how long rendered artifacts stay cached.
const DefaultRenderTTL = 24 * time.Hour

// Runner runs editor operations against a store.
type Runner struct {
	Store     store.Store
	Cache     cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger
	RenderTTL time.Duration

	mu    sync.Mutex
	locks map[string]*docLock
}

// docLock serializes writers of one document. refs counts holders and
// waiters; the entry is dropped when it reaches zero.
type docLock struct {
	sync.Mutex
	refs int
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(s store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Store:     s,
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		RenderTTL: DefaultRenderTTL,
		locks:     make(map[string]*docLock),
	}
}

func (r *Runner) lock(name string) func() {
	r.mu.Lock()
	l, ok := r.locks[name]
	if !ok {
		l = &docLock{}
		r.locks[name] = l
	}
	l.refs++
	r.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		r.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(r.locks, name)
		}
		r.mu.Unlock()
	}
}

func (r *Runner) modelOptions() network.Options {
	return network.Options{Logger: r.Logger}
}

// Create stores a new empty document. It fails with DUPLICATE_ID when name
// exists unless overwrite is set.
func (r *Runner) Create(ctx context.Context, name string, overwrite bool) (*network.Model, error) {
	defer r.lock(name)()
	if !overwrite {
		if _, err := r.Store.Load(ctx, name); err == nil {
			return nil, errors.New(errors.ErrCodeDuplicateID, "document %q already exists", name)
		} else if !errors.Is(err, errors.ErrCodeDocumentNotFound) {
			return nil, err
		}
	}
	m := network.New(r.modelOptions())
	if err := r.save(ctx, name, m); err != nil {
		return nil, err
	}
	r.Logger.Info("created document", "name", name)
	return m, nil
}

// Open loads name and enters the components of path in turn.
func (r *Runner) Open(ctx context.Context, name string, path []string) (*network.Model, error) {
	_, m, err := r.open(ctx, name, path)
	return m, err
}

func (r *Runner) open(ctx context.Context, name string, path []string) ([]byte, *network.Model, error) {
	start := time.Now()
	raw, err := r.Store.Load(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	doc, err := hio.Unmarshal(raw)
	if err != nil {
		return nil, nil, err
	}
	m, err := network.NewFromDocument(doc, r.modelOptions())
	if err != nil {
		return nil, nil, err
	}
	if len(path) > 0 {
		if err := m.EnterPath(path); err != nil {
			return nil, nil, err
		}
	}
	r.Logger.Debug("opened document", "name", name, "context", network.FormatPath(path), "duration", time.Since(start))
	return raw, m, nil
}

// Save writes the root document of m under name.
func (r *Runner) Save(ctx context.Context, name string, m *network.Model) error {
	defer r.lock(name)()
	return r.save(ctx, name, m)
}

func (r *Runner) save(ctx context.Context, name string, m *network.Model) error {
	data, err := hio.Marshal(m.Root())
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", name)
	}
	return r.Store.Save(ctx, name, data)
}

// Update opens name at path, runs fn and saves the document if fn
// succeeded. The returned model reflects the document and context after fn.
func (r *Runner) Update(ctx context.Context, name string, path []string, fn func(m *network.Model) error) (*network.Model, error) {
	defer r.lock(name)()

	_, m, err := r.open(ctx, name, path)
	if err != nil {
		return nil, err
	}
	if err := fn(m); err != nil {
		return nil, err
	}
	if err := r.save(ctx, name, m); err != nil {
		return nil, err
	}
	r.Logger.Debug("updated document", "name", name, "context", network.FormatPath(m.ContextIDs()))
	return m, nil
}

// Import replaces document name with doc, validating it first.
func (r *Runner) Import(ctx context.Context, name string, doc *network.Subgraph) (*network.Model, error) {
	defer r.lock(name)()
	m, err := network.NewFromDocument(doc, r.modelOptions())
	if err != nil {
		return nil, err
	}
	if err := r.save(ctx, name, m); err != nil {
		return nil, err
	}
	r.Logger.Info("imported document", "name", name, "nodes", len(m.Root().Nodes))
	return m, nil
}

// Delete removes document name.
func (r *Runner) Delete(ctx context.Context, name string) error {
	defer r.lock(name)()
	return r.Store.Delete(ctx, name)
}

// List returns the stored documents.
func (r *Runner) List(ctx context.Context) ([]store.Info, error) {
	return r.Store.List(ctx)
}

// =============================================================================
// Rendering
// =============================================================================

// Formats accepted by [Runner.Render].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// RenderOptions configures [Runner.Render].
type RenderOptions struct {
	Format   string  // dot, svg (default), pdf or png
	Expand   bool    // draw nested components as clusters
	Detailed bool    // append ids to labels
	Scale    float64 // png only
	Refresh  bool    // bypass the cache
}

// RenderResult is a rendered level of a document.
type RenderResult struct {
	Data        []byte
	ContentType string
	CacheHit    bool
	Duration    time.Duration
}

var contentTypes = map[string]string{
	FormatDOT: "text/vnd.graphviz",
	FormatSVG: "image/svg+xml",
	FormatPDF: "application/pdf",
	FormatPNG: "image/png",
}

// Render draws the level of name at path.
func (r *Runner) Render(ctx context.Context, name string, path []string, opts RenderOptions) (*RenderResult, error) {
	if opts.Format == "" {
		opts.Format = FormatSVG
	}
	contentType, ok := contentTypes[opts.Format]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported format %q", opts.Format)
	}

	start := time.Now()
	raw, m, err := r.open(ctx, name, path)
	if err != nil {
		return nil, err
	}

	keyOpts := cache.RenderKeyOpts{
		Context:  path,
		Format:   opts.Format,
		Expand:   opts.Expand,
		Detailed: opts.Detailed,
	}
	if opts.Format == FormatPNG {
		keyOpts.Scale = opts.Scale
	}
	key := r.Keyer.RenderKey(cache.Hash(raw), keyOpts)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			r.Logger.Debug("render cache hit", "name", name, "format", opts.Format)
			return &RenderResult{Data: data, ContentType: contentType, CacheHit: true, Duration: time.Since(start)}, nil
		}
	}

	dot := nodelink.ToDOT(m.Current(), nodelink.Options{
		Expand:   opts.Expand,
		Detailed: opts.Detailed,
		Title:    strings.Join(m.Breadcrumbs(), " > "),
	})
	data, err := r.draw(ctx, dot, opts)
	if err != nil {
		return nil, err
	}

	if err := r.Cache.Set(ctx, key, data, r.RenderTTL); err != nil {
		r.Logger.Warn("render cache write failed", "name", name, "err", err)
	}
	r.Logger.Info("rendered document", "name", name, "format", opts.Format, "bytes", len(data), "duration", time.Since(start))
	return &RenderResult{Data: data, ContentType: contentType, Duration: time.Since(start)}, nil
}

func (r *Runner) draw(ctx context.Context, dot string, opts RenderOptions) ([]byte, error) {
	if opts.Format == FormatDOT {
		return []byte(dot), nil
	}
	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch opts.Format {
	case FormatPDF:
		return render.ToPDF(ctx, svg)
	case FormatPNG:
		return render.ToPNG(ctx, svg, opts.Scale)
	}
	return svg, nil
}

// Close releases the cache and the store.
func (r *Runner) Close() error {
	cerr := r.Cache.Close()
	if err := r.Store.Close(); err != nil {
		return err
	}
	return cerr
}
