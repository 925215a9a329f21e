package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/growteq/storefront/localstore"
	"github.com/growteq/storefront/storefront"
)

// ErrCatalogUnavailable is returned when a remote fetch failed and nothing
// is cached. It distinguishes "cannot tell" from a legitimately empty list.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// ErrClosed is returned by reads that complete after Close.
var ErrClosed = errors.New("catalog index closed")

// Error message constants.
const (
	ErrMsgProductNotFound = "product not found"
)

// DefaultFetchTimeout bounds each remote read.
const DefaultFetchTimeout = 10 * time.Second

// Result is a catalog read together with where it came from.
type Result[T any] struct {
	Value T
	// Stale is set when the remote fetch failed and an expired cache entry was served.
	Stale bool
	// Unavailable is set when the remote fetch failed and nothing was cached.
	Unavailable bool
	// Fetched is set when Value came from the remote store on this call.
	Fetched bool
}

// Config tunes an Index. Zero values take the defaults.
type Config struct {
	TTL          time.Duration
	FetchTimeout time.Duration
	Logger       *zap.Logger
	Now          func() time.Time
}

// Index serves catalog reads through the local cache.
type Index struct {
	source  Source
	cache   *cache
	timeout time.Duration
	logger  *zap.Logger

	closed    atomic.Bool
	ready     chan struct{}
	readyOnce sync.Once
}

// NewIndex creates an Index reading from source and caching in store.
// Call Load before serving reads that should not hit the remote store.
func NewIndex(source Source, store localstore.Store, cfg Config) *Index {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Index{
		source:  source,
		cache:   &cache{store: store, ttl: cfg.TTL, now: cfg.Now, logger: cfg.Logger},
		timeout: cfg.FetchTimeout,
		logger:  cfg.Logger,
		ready:   make(chan struct{}),
	}
}

// cached serves key from a fresh cache entry, otherwise fetches it. A failed
// fetch falls back to the cached value regardless of age.
func cached[T any](ctx context.Context, ix *Index, key string, fetch func(context.Context) (T, error)) (Result[T], error) {
	var res Result[T]
	if ix.closed.Load() {
		return res, ErrClosed
	}

	var hit T
	if ix.cache.read(ctx, key, false, &hit) {
		res.Value = hit
		return res, nil
	}

	fctx, cancel := context.WithTimeout(ctx, ix.timeout)
	value, err := fetch(fctx)
	cancel()

	// Results arriving after Close are dropped without touching the cache.
	if ix.closed.Load() {
		return Result[T]{}, ErrClosed
	}

	if err == nil {
		ix.cache.write(ctx, key, value)
		res.Value = value
		res.Fetched = true
		return res, nil
	}

	var stale T
	if ix.cache.read(ctx, key, true, &stale) {
		ix.logger.Warn("catalog fetch failed, serving stale",
			zap.String("key", key),
			zap.Error(err),
		)
		return Result[T]{Value: stale, Stale: true}, nil
	}

	ix.logger.Warn("catalog fetch failed, no cache",
		zap.String("key", key),
		zap.Error(err),
	)
	return Result[T]{Unavailable: true}, fmt.Errorf("%w: %s: %v", ErrCatalogUnavailable, key, err)
}

// Load fetches every catalog collection concurrently and closes Ready once
// all of them are servable, fresh or stale.
func (ix *Index) Load(ctx context.Context) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	run(func() error { _, err := ix.Products(ctx); return err })
	run(func() error { _, err := ix.Categories(ctx); return err })
	run(func() error { _, err := ix.stemSizes(ctx); return err })
	run(func() error { _, err := ix.settings(ctx); return err })
	run(func() error { return ix.loadColors(ctx) })
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}
	ix.readyOnce.Do(func() { close(ix.ready) })
	ix.logger.Info("catalog loaded")
	return nil
}

// loadColors fetches every type's colors in one read and primes the per-type
// entries. Only a remote read primes them, so a cache hit never extends their age.
func (ix *Index) loadColors(ctx context.Context) error {
	res, err := cached(ctx, ix, "allColors", ix.source.AllColors)
	if err != nil {
		return err
	}
	if !res.Fetched {
		return nil
	}
	for flowerType, colors := range res.Value {
		ix.cache.write(ctx, "colors_"+flowerType, colors)
	}
	return nil
}

// Ready is closed once Load has succeeded.
func (ix *Index) Ready() <-chan struct{} {
	return ix.ready
}

// Close marks the index as torn down. Reads still in flight discard their results.
func (ix *Index) Close() {
	ix.closed.Store(true)
}

// Refresh drops every cached entry and loads again.
func (ix *Index) Refresh(ctx context.Context) error {
	if err := ix.cache.clear(ctx); err != nil {
		ix.logger.Warn("catalog cache clear failed", zap.Error(err))
	}
	return ix.Load(ctx)
}

// Colors returns the color variants of a flower type in catalog order.
// An unknown type has no colors.
func (ix *Index) Colors(ctx context.Context, flowerType string) (Result[[]FlowerColor], error) {
	return cached(ctx, ix, "colors_"+flowerType, func(ctx context.Context) ([]FlowerColor, error) {
		return ix.source.Colors(ctx, flowerType)
	})
}

func (ix *Index) stemSizes(ctx context.Context) (Result[map[string][]StemSize], error) {
	return cached(ctx, ix, "stemSizes", ix.source.StemSizes)
}

// Sizes returns the stem sizes of a flower type, falling back to the
// catalog's default set and then to DefaultStemSizes. Value is never empty;
// when the catalog could not be read at all it holds DefaultStemSizes, the
// result is marked Unavailable and ErrCatalogUnavailable is returned.
func (ix *Index) Sizes(ctx context.Context, flowerType string) (Result[[]StemSize], error) {
	res, err := ix.stemSizes(ctx)
	if errors.Is(err, ErrClosed) {
		return Result[[]StemSize]{}, err
	}
	out := Result[[]StemSize]{Stale: res.Stale, Unavailable: res.Unavailable, Fetched: res.Fetched}
	switch {
	case len(res.Value[flowerType]) > 0:
		out.Value = res.Value[flowerType]
	case len(res.Value[DefaultSizeSet]) > 0:
		out.Value = res.Value[DefaultSizeSet]
	default:
		out.Value = DefaultStemSizes()
	}
	return out, err
}

func (ix *Index) settings(ctx context.Context) (Result[*Settings], error) {
	return cached(ctx, ix, "settings", ix.source.Settings)
}

// Settings returns the catalog's ordering rules, or DefaultSettings when the
// catalog has none or cannot be reached.
func (ix *Index) Settings(ctx context.Context) Settings {
	res, err := ix.settings(ctx)
	if err != nil || res.Value == nil {
		return DefaultSettings()
	}
	return res.Value.withDefaults()
}

// Products returns every active product ordered by name.
func (ix *Index) Products(ctx context.Context) (Result[[]Product], error) {
	return cached(ctx, ix, "products", ix.source.Products)
}

func (ix *Index) filterProducts(ctx context.Context, keep func(Product) bool) (Result[[]Product], error) {
	res, err := ix.Products(ctx)
	if err != nil {
		return res, err
	}
	out := make([]Product, 0, len(res.Value))
	for _, p := range res.Value {
		if keep(p) {
			out = append(out, p)
		}
	}
	res.Value = out
	return res, nil
}

// ProductsByCategory returns the products in a category; AllCategoryID matches all.
func (ix *Index) ProductsByCategory(ctx context.Context, categoryID string) (Result[[]Product], error) {
	if categoryID == "" || categoryID == AllCategoryID {
		return ix.Products(ctx)
	}
	return ix.filterProducts(ctx, func(p Product) bool { return p.CategoryID == categoryID })
}

// Search matches query case-insensitively against name, description and
// tags. A blank query returns every product.
func (ix *Index) Search(ctx context.Context, query string) (Result[[]Product], error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return ix.Products(ctx)
	}
	return ix.filterProducts(ctx, func(p Product) bool { return matches(p, q) })
}

func matches(p Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Featured returns the featured products.
func (ix *Index) Featured(ctx context.Context) (Result[[]Product], error) {
	return ix.filterProducts(ctx, func(p Product) bool { return p.Featured })
}

// Product looks up a single product by id.
func (ix *Index) Product(ctx context.Context, id string) (Product, error) {
	res, err := ix.Products(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range res.Value {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, storefront.NewNotFound(fmt.Sprintf("%s: %s", ErrMsgProductNotFound, id))
}

// Categories returns the navigation categories, led by the synthetic
// "All Flowers" entry.
func (ix *Index) Categories(ctx context.Context) (Result[[]Category], error) {
	return cached(ctx, ix, "categories", func(ctx context.Context) ([]Category, error) {
		cats, err := ix.source.Categories(ctx)
		if err != nil {
			return nil, err
		}
		out := []Category{{
			ID:          AllCategoryID,
			Name:        "All Flowers",
			Icon:        "flower-tulip-outline",
			Description: "Browse all flowers",
		}}
		for _, c := range cats {
			if c.ID != AllCategoryID {
				out = append(out, c)
			}
		}
		return out, nil
	})
}

// ProductImage returns the primary image for a product using its type's colors.
func (ix *Index) ProductImage(ctx context.Context, p Product) string {
	res, _ := ix.Colors(ctx, p.Type)
	return ProductImage(p, res.Value)
}
