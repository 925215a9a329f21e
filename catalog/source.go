package catalog

import (
	"context"
	"sort"
	"sync"
)

// Source is the remote document store contract the catalog reads from.
//
// Colors returns an empty list for an unknown type. Settings returns nil when
// no settings document exists.
type Source interface {
	Products(ctx context.Context) ([]Product, error)
	Categories(ctx context.Context) ([]Category, error)
	Colors(ctx context.Context, flowerType string) ([]FlowerColor, error)
	AllColors(ctx context.Context) (map[string][]FlowerColor, error)
	StemSizes(ctx context.Context) (map[string][]StemSize, error)
	Settings(ctx context.Context) (*Settings, error)
}

// StaticSource is an in-process Source over fixed data.
type StaticSource struct {
	mu         sync.RWMutex
	products   []Product
	categories []Category
	colors     map[string][]FlowerColor
	sizes      map[string][]StemSize
	settings   *Settings
}

// NewStaticSource creates a source over the given data. Any argument may be nil.
func NewStaticSource(products []Product, categories []Category, colors map[string][]FlowerColor, sizes map[string][]StemSize, settings *Settings) *StaticSource {
	if colors == nil {
		colors = map[string][]FlowerColor{}
	}
	if sizes == nil {
		sizes = map[string][]StemSize{}
	}
	return &StaticSource{
		products:   products,
		categories: categories,
		colors:     colors,
		sizes:      sizes,
		settings:   settings,
	}
}

// BuiltinSource returns a StaticSource seeded with the built-in catalog.
func BuiltinSource() *StaticSource {
	settings := DefaultSettings()
	return NewStaticSource(builtinProducts(), builtinCategories(), builtinColors(), builtinStemSizes(), &settings)
}

func (s *StaticSource) Products(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]Product(nil), s.products...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *StaticSource) Categories(ctx context.Context) ([]Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]Category(nil), s.categories...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *StaticSource) Colors(ctx context.Context, flowerType string) ([]FlowerColor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FlowerColor{}, s.colors[flowerType]...), nil
}

func (s *StaticSource) AllColors(ctx context.Context) (map[string][]FlowerColor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]FlowerColor, len(s.colors))
	for k, v := range s.colors {
		out[k] = append([]FlowerColor{}, v...)
	}
	return out, nil
}

func (s *StaticSource) StemSizes(ctx context.Context) (map[string][]StemSize, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]StemSize, len(s.sizes))
	for k, v := range s.sizes {
		out[k] = append([]StemSize{}, v...)
	}
	return out, nil
}

func (s *StaticSource) Settings(ctx context.Context) (*Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, nil
	}
	cp := *s.settings
	return &cp, nil
}

// PutProduct adds or replaces a product.
func (s *StaticSource) PutProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			return
		}
	}
	s.products = append(s.products, p)
}

// PutColors replaces the color variants of a flower type.
func (s *StaticSource) PutColors(flowerType string, colors []FlowerColor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colors[flowerType] = append([]FlowerColor(nil), colors...)
}
