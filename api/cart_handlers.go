package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/growteq/storefront/cart"
	"github.com/growteq/storefront/catalog"
	"github.com/growteq/storefront/order"
	"github.com/growteq/storefront/pricing"
	"github.com/growteq/storefront/selection"
	"github.com/growteq/storefront/storefront"
)

// DateLayout is the wire format of required dates.
const DateLayout = "2006-01-02"

// Error message constants.
const (
	ErrMsgRequiredDateInvalid = "required date must be YYYY-MM-DD"
)

type selectionRequest struct {
	UserID       string `json:"userId"`
	ProductID    string `json:"productId"`
	ColorID      string `json:"colorId"`
	SizeID       string `json:"sizeId"`
	Quantity     int    `json:"quantity"`
	RequiredDate string `json:"requiredDate"`
}

// builder replays a selection request onto a fresh builder.
func (s *Service) builder(ctx context.Context, req selectionRequest) (*selection.Builder, error) {
	p, err := s.catalog.Product(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	colors, err := s.catalog.Colors(ctx, p.Type)
	if err != nil {
		return nil, err
	}
	sizes, err := s.catalog.Sizes(ctx, p.Type)
	if err != nil {
		return nil, err
	}
	b := selection.New(p, colors.Value, sizes.Value, s.catalog.Settings(ctx),
		selection.WithClock(s.now),
		selection.WithLocation(s.loc),
	)
	if req.ColorID != "" {
		if err := b.SetColor(req.ColorID); err != nil {
			return nil, err
		}
	}
	if req.SizeID != "" {
		if err := b.SetSize(req.SizeID); err != nil {
			return nil, err
		}
	}
	if err := b.SetQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.RequiredDate) != "" {
		d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(req.RequiredDate), s.loc)
		if err != nil {
			return nil, storefront.NewInvalidArgument(ErrMsgRequiredDateInvalid)
		}
		b.SetRequiredDate(d)
	}
	return b, nil
}

type previewResponse struct {
	State           string            `json:"state"`
	Missing         []selection.Field `json:"missing"`
	BelowMinimum    bool              `json:"belowMinimum"`
	MinimumQuantity int               `json:"minimumQuantity"`
	Discount        decimal.Decimal   `json:"discount"`
	DiscountLabel   string            `json:"discountLabel"`
	Quote           *pricing.Quote    `json:"quote,omitempty"`
	HeroImage       string            `json:"heroImage"`
	EarliestDate    string            `json:"earliestDate"`
	LatestDate      string            `json:"latestDate"`
}

func previewSelection(ctx context.Context, s *Service, req selectionRequest) (previewResponse, error) {
	b, err := s.builder(ctx, req)
	if err != nil {
		return previewResponse{}, err
	}
	earliest, latest := b.DateWindow()
	resp := previewResponse{
		State:           b.State().String(),
		Missing:         nonNil(b.Missing()),
		BelowMinimum:    b.BelowMinimum() != nil,
		MinimumQuantity: b.Settings().MinimumOrderQuantity,
		Discount:        b.Discount(),
		DiscountLabel:   pricing.FormatDiscount(b.Discount()),
		HeroImage:       b.HeroImage(),
		EarliestDate:    earliest.Format(DateLayout),
		LatestDate:      latest.Format(DateLayout),
	}
	if q := b.Quote(); q.Priced {
		resp.Quote = &q
	}
	return resp, nil
}

type cartView struct {
	Lines      []cart.Line `json:"lines"`
	LineCount  int         `json:"lineCount"`
	TotalStems int         `json:"totalStems"`
	// Persisted is false when the last local write failed; the cart is still
	// held in memory and the next mutation retries the write.
	Persisted bool `json:"persisted"`
}

func viewOf(c *cart.Store) cartView {
	return cartView{
		Lines:      nonNil(c.Lines()),
		LineCount:  c.LineCount(),
		TotalStems: c.TotalStems(),
		Persisted:  !c.Dirty(),
	}
}

// cartResult treats a local persistence failure as success with
// Persisted=false.
func (s *Service) cartResult(c *cart.Store, userID string, err error) (cartView, error) {
	var perr *cart.PersistenceError
	if err != nil && !errors.As(err, &perr) {
		return cartView{}, err
	}
	if perr != nil {
		s.logger.Warn("cart held in memory only",
			zap.String("user_id", userID),
			zap.Error(perr))
	}
	return viewOf(c), nil
}

type confirmResponse struct {
	Line cart.Line `json:"line"`
	Cart cartView  `json:"cart"`
}

func confirmSelection(ctx context.Context, s *Service, req selectionRequest) (confirmResponse, error) {
	c, err := s.sessions.Cart(ctx, req.UserID)
	if err != nil {
		return confirmResponse{}, err
	}
	b, err := s.builder(ctx, req)
	if err != nil {
		return confirmResponse{}, err
	}
	line, err := b.Confirm(ctx, c)
	view, err := s.cartResult(c, req.UserID, err)
	if err != nil {
		return confirmResponse{}, err
	}
	return confirmResponse{Line: line, Cart: view}, nil
}

type cartRequest struct {
	UserID string `json:"userId"`
}

func getCart(ctx context.Context, s *Service, req cartRequest) (cartView, error) {
	c, err := s.sessions.Cart(ctx, req.UserID)
	if err != nil {
		return cartView{}, err
	}
	return s.cartResult(c, req.UserID, c.Flush(ctx))
}

type removeLineRequest struct {
	UserID string `json:"userId"`
	LineID string `json:"lineId"`
}

func removeLine(ctx context.Context, s *Service, req removeLineRequest) (cartView, error) {
	c, err := s.sessions.Cart(ctx, req.UserID)
	if err != nil {
		return cartView{}, err
	}
	return s.cartResult(c, req.UserID, c.Remove(ctx, req.LineID))
}

type updateQuantityRequest struct {
	UserID   string `json:"userId"`
	LineID   string `json:"lineId"`
	Quantity int    `json:"quantity"`
}

func updateLineQuantity(ctx context.Context, s *Service, req updateQuantityRequest) (cartView, error) {
	c, err := s.sessions.Cart(ctx, req.UserID)
	if err != nil {
		return cartView{}, err
	}
	minimum := s.catalog.Settings(ctx).MinimumOrderQuantity
	return s.cartResult(c, req.UserID, c.UpdateQuantity(ctx, req.LineID, req.Quantity, minimum))
}

func clearCart(ctx context.Context, s *Service, req cartRequest) (cartView, error) {
	c, err := s.sessions.Cart(ctx, req.UserID)
	if err != nil {
		return cartView{}, err
	}
	return s.cartResult(c, req.UserID, c.Clear(ctx))
}

type quoteCartRequest struct {
	UserID       string             `json:"userId"`
	DeliveryType order.DeliveryType `json:"deliveryType"`
}

type lineQuote struct {
	LineID string        `json:"lineId"`
	Quote  pricing.Quote `json:"quote"`
}

type cartQuoteResponse struct {
	Lines       []lineQuote     `json:"lines"`
	Priced      bool            `json:"priced"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

// quoteCart prices the cart indicatively. Lines of unpriced or unknown
// products make the whole quote unpriced.
func quoteCart(ctx context.Context, s *Service, req quoteCartRequest) (cartQuoteResponse, error) {
	c, err := s.sessions.Cart(ctx, req.UserID)
	if err != nil {
		return cartQuoteResponse{}, err
	}
	resp := cartQuoteResponse{Lines: []lineQuote{}, Priced: true, Subtotal: decimal.Zero}
	for _, l := range c.Lines() {
		var base decimal.Decimal
		p, err := s.catalog.Product(ctx, l.ProductID)
		var cmdErr *storefront.CommandError
		switch {
		case err == nil:
			base = decimal.NewFromFloat(p.BasePrice)
		case errors.As(err, &cmdErr), errors.Is(err, catalog.ErrCatalogUnavailable):
			base = decimal.Zero
		default:
			return cartQuoteResponse{}, err
		}
		multiplier := decimal.NewFromInt(1)
		if l.Size != nil && l.Size.PriceMultiplier > 0 {
			multiplier = decimal.NewFromFloat(l.Size.PriceMultiplier)
		}
		q := pricing.NewQuote(base, multiplier, l.Quantity)
		resp.Priced = resp.Priced && q.Priced
		resp.Subtotal = resp.Subtotal.Add(q.Total)
		resp.Lines = append(resp.Lines, lineQuote{LineID: l.ID, Quote: q})
	}
	if len(resp.Lines) == 0 {
		resp.Priced = false
	}
	resp.DeliveryFee = pricing.DeliveryFee(resp.Subtotal, req.DeliveryType != order.DeliveryPickup)
	resp.Total = resp.Subtotal.Add(resp.DeliveryFee)
	return resp, nil
}
