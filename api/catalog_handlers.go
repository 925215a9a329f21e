package api

import (
	"context"
	"errors"
	"strings"

	"github.com/growteq/storefront/catalog"
)

type listCategoriesRequest struct{}

type categoriesResponse struct {
	Categories  []catalog.Category `json:"categories"`
	Stale       bool               `json:"stale"`
	Unavailable bool               `json:"unavailable"`
}

func listCategories(ctx context.Context, s *Service, _ listCategoriesRequest) (categoriesResponse, error) {
	res, err := s.catalog.Categories(ctx)
	if err != nil && !errors.Is(err, catalog.ErrCatalogUnavailable) {
		return categoriesResponse{}, err
	}
	return categoriesResponse{
		Categories:  nonNil(res.Value),
		Stale:       res.Stale,
		Unavailable: res.Unavailable,
	}, nil
}

type listProductsRequest struct {
	CategoryID string `json:"categoryId"`
	Query      string `json:"query"`
	Featured   bool   `json:"featured"`
}

type productView struct {
	catalog.Product
	DisplayImage string `json:"displayImage"`
}

type productsResponse struct {
	Products    []productView `json:"products"`
	Stale       bool          `json:"stale"`
	Unavailable bool          `json:"unavailable"`
}

func listProducts(ctx context.Context, s *Service, req listProductsRequest) (productsResponse, error) {
	var (
		res catalog.Result[[]catalog.Product]
		err error
	)
	switch {
	case req.Featured:
		res, err = s.catalog.Featured(ctx)
	case strings.TrimSpace(req.Query) != "":
		res, err = s.catalog.Search(ctx, req.Query)
	default:
		res, err = s.catalog.ProductsByCategory(ctx, req.CategoryID)
	}
	if err != nil && !errors.Is(err, catalog.ErrCatalogUnavailable) {
		return productsResponse{}, err
	}

	filterCategory := req.CategoryID != "" && req.CategoryID != catalog.AllCategoryID &&
		(req.Featured || strings.TrimSpace(req.Query) != "")

	out := productsResponse{Products: []productView{}, Stale: res.Stale, Unavailable: res.Unavailable}
	for _, p := range res.Value {
		if filterCategory && p.CategoryID != req.CategoryID {
			continue
		}
		out.Products = append(out.Products, productView{Product: p, DisplayImage: s.catalog.ProductImage(ctx, p)})
	}
	return out, nil
}

type getProductRequest struct {
	ProductID string `json:"productId"`
}

type productDetailResponse struct {
	Product   catalog.Product       `json:"product"`
	Colors    []catalog.FlowerColor `json:"colors"`
	Sizes     []catalog.StemSize    `json:"sizes"`
	Settings  catalog.Settings      `json:"settings"`
	HeroImage string                `json:"heroImage"`
	Stale     bool                  `json:"stale"`
}

func getProduct(ctx context.Context, s *Service, req getProductRequest) (productDetailResponse, error) {
	p, err := s.catalog.Product(ctx, req.ProductID)
	if err != nil {
		return productDetailResponse{}, err
	}
	colors, err := s.catalog.Colors(ctx, p.Type)
	if err != nil {
		return productDetailResponse{}, err
	}
	sizes, err := s.catalog.Sizes(ctx, p.Type)
	if err != nil {
		return productDetailResponse{}, err
	}
	return productDetailResponse{
		Product:   p,
		Colors:    nonNil(colors.Value),
		Sizes:     sizes.Value,
		Settings:  s.catalog.Settings(ctx),
		HeroImage: catalog.ProductImage(p, colors.Value),
		Stale:     colors.Stale || sizes.Stale,
	}, nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
