// Package selection accumulates a shopper's choices for one product and
// turns a complete selection into a cart line.
package selection

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/growteq/storefront/cart"
	"github.com/growteq/storefront/catalog"
	"github.com/growteq/storefront/pricing"
	"github.com/growteq/storefront/storefront"
)

// State is the builder's progress toward a confirmable selection.
type State int

const (
	Empty State = iota
	PartiallySelected
	Valid
)

func (s State) String() string {
	switch s {
	case Empty:
		return "EMPTY"
	case PartiallySelected:
		return "PARTIALLY_SELECTED"
	case Valid:
		return "VALID"
	default:
		return "UNKNOWN"
	}
}

// Error message constants.
const (
	ErrMsgUnknownColor     = "unknown color"
	ErrMsgUnknownSize      = "unknown stem size"
	ErrMsgNegativeQuantity = "quantity cannot be negative"
)

// Adder receives confirmed lines.
type Adder interface {
	AddOrReplace(ctx context.Context, line cart.Line) error
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock sets the source of "today" for the delivery window.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithLocation sets the time zone delivery dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) { b.loc = loc }
}

// Builder is the in-progress selection for one product.
type Builder struct {
	product  catalog.Product
	colors   []catalog.FlowerColor
	sizes    []catalog.StemSize
	settings catalog.Settings
	now      func() time.Time
	loc      *time.Location

	color        *catalog.FlowerColor
	size         *catalog.StemSize
	quantity     int
	requiredDate *time.Time
}

// New starts an empty selection. An empty size list falls back to the
// built-in stem sizes.
func New(product catalog.Product, colors []catalog.FlowerColor, sizes []catalog.StemSize, settings catalog.Settings, opts ...Option) *Builder {
	if len(sizes) == 0 {
		sizes = catalog.DefaultStemSizes()
	}
	b := &Builder{
		product:  product,
		colors:   colors,
		sizes:    sizes,
		settings: settings,
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Product returns the product being configured.
func (b *Builder) Product() catalog.Product { return b.product }

// Colors returns the product's color variants.
func (b *Builder) Colors() []catalog.FlowerColor { return b.colors }

// Sizes returns the product's stem sizes.
func (b *Builder) Sizes() []catalog.StemSize { return b.sizes }

// Settings returns the ordering rules the selection is checked against.
func (b *Builder) Settings() catalog.Settings { return b.settings }

// SetColor selects a color variant by id.
func (b *Builder) SetColor(id string) error {
	c, ok := catalog.FindColor(b.colors, id)
	if !ok {
		return storefront.NewInvalidArgumentf("%s: %s", ErrMsgUnknownColor, id)
	}
	b.color = &c
	return nil
}

// ClearColor unsets the color.
func (b *Builder) ClearColor() { b.color = nil }

// Color returns the selected color.
func (b *Builder) Color() (catalog.FlowerColor, bool) {
	if b.color == nil {
		return catalog.FlowerColor{}, false
	}
	return *b.color, true
}

// SetSize selects a stem size by id.
func (b *Builder) SetSize(id string) error {
	s, ok := catalog.FindSize(b.sizes, id)
	if !ok {
		return storefront.NewInvalidArgumentf("%s: %s", ErrMsgUnknownSize, id)
	}
	b.size = &s
	return nil
}

// ClearSize unsets the stem size.
func (b *Builder) ClearSize() { b.size = nil }

// Size returns the selected stem size.
func (b *Builder) Size() (catalog.StemSize, bool) {
	if b.size == nil {
		return catalog.StemSize{}, false
	}
	return *b.size, true
}

// SetQuantity sets the stem count. Zero unsets it. Values below the minimum
// are kept as entered and reported by Validate.
func (b *Builder) SetQuantity(n int) error {
	if n < 0 {
		return storefront.NewInvalidArgument(ErrMsgNegativeQuantity)
	}
	b.quantity = n
	return nil
}

// Quantity returns the entered stem count, zero when unset.
func (b *Builder) Quantity() int { return b.quantity }

// SetRequiredDate sets the delivery date. Only the calendar day in the
// builder's location is kept.
func (b *Builder) SetRequiredDate(t time.Time) {
	d := b.dateOf(t)
	b.requiredDate = &d
}

// ClearRequiredDate unsets the delivery date.
func (b *Builder) ClearRequiredDate() { b.requiredDate = nil }

// RequiredDate returns the delivery date.
func (b *Builder) RequiredDate() (time.Time, bool) {
	if b.requiredDate == nil {
		return time.Time{}, false
	}
	return *b.requiredDate, true
}

func (b *Builder) dateOf(t time.Time) time.Time {
	t = t.In(b.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, b.loc)
}

// DateWindow returns the earliest and latest acceptable delivery dates.
func (b *Builder) DateWindow() (time.Time, time.Time) {
	today := b.dateOf(b.now())
	return today.AddDate(0, 0, b.settings.DeliveryMinDays), today.AddDate(0, 0, b.settings.DeliveryMaxDays)
}

// Missing lists the inputs that still block confirmation. A date outside
// the delivery window counts as missing.
func (b *Builder) Missing() []Field {
	var missing []Field
	if b.color == nil && len(b.colors) > 0 {
		missing = append(missing, FieldColor)
	}
	if b.size == nil {
		missing = append(missing, FieldSize)
	}
	if b.quantity == 0 {
		missing = append(missing, FieldQuantity)
	}
	if b.requiredDate == nil {
		missing = append(missing, FieldRequiredDate)
	} else {
		earliest, latest := b.DateWindow()
		if b.requiredDate.Before(earliest) || b.requiredDate.After(latest) {
			missing = append(missing, FieldRequiredDate)
		}
	}
	return missing
}

// BelowMinimum reports an entered quantity under the catalog minimum, or nil.
func (b *Builder) BelowMinimum() *BelowMinimumQuantity {
	if b.quantity > 0 && b.quantity < b.settings.MinimumOrderQuantity {
		return &BelowMinimumQuantity{Minimum: b.settings.MinimumOrderQuantity, Quantity: b.quantity}
	}
	return nil
}

// Validate returns nil when the selection can be confirmed, an
// *InvalidSelection when inputs are missing, or a *BelowMinimumQuantity.
func (b *Builder) Validate() error {
	if missing := b.Missing(); len(missing) > 0 {
		return &InvalidSelection{Missing: missing}
	}
	if below := b.BelowMinimum(); below != nil {
		return below
	}
	return nil
}

// State reports the builder's progress.
func (b *Builder) State() State {
	if b.color == nil && b.size == nil && b.quantity == 0 && b.requiredDate == nil {
		return Empty
	}
	if b.Validate() != nil {
		return PartiallySelected
	}
	return Valid
}

// Discount is the volume discount for the entered quantity.
func (b *Builder) Discount() decimal.Decimal {
	return pricing.TierDiscount(b.quantity)
}

// Quote prices the selection indicatively.
func (b *Builder) Quote() pricing.Quote {
	multiplier := decimal.NewFromInt(1)
	if b.size != nil {
		multiplier = decimal.NewFromFloat(b.size.PriceMultiplier)
	}
	return pricing.NewQuote(decimal.NewFromFloat(b.product.BasePrice), multiplier, b.quantity)
}

// HeroImage is the image to display: the selected color's, else the
// product's primary image.
func (b *Builder) HeroImage() string {
	if b.color != nil {
		if img := catalog.ColorImage(*b.color); img != "" {
			return img
		}
	}
	return catalog.ProductImage(b.product, b.colors)
}

// Line builds the cart line for a valid selection.
func (b *Builder) Line() (cart.Line, error) {
	if err := b.Validate(); err != nil {
		return cart.Line{}, err
	}
	line := cart.Line{
		ProductID:    b.product.ID,
		Name:         b.product.Name,
		Type:         b.product.Type,
		Size:         cart.SelectSize(*b.size),
		Quantity:     b.quantity,
		RequiredDate: *b.requiredDate,
		DisplayImage: b.HeroImage(),
	}
	if b.color != nil {
		line.Color = cart.SelectColor(*b.color)
	}
	line.ID = storefront.LineID(line.ProductID, line.ColorID(), line.SizeID()).String()
	return line, nil
}

// Confirm hands a valid selection to the cart and resets the builder. A
// cart persistence failure still resets, since the line is held in memory.
func (b *Builder) Confirm(ctx context.Context, to Adder) (cart.Line, error) {
	line, err := b.Line()
	if err != nil {
		return cart.Line{}, err
	}
	if err := to.AddOrReplace(ctx, line); err != nil {
		var perr *cart.PersistenceError
		if errors.As(err, &perr) {
			b.Reset()
			return line, err
		}
		return cart.Line{}, err
	}
	b.Reset()
	return line, nil
}

// Reset returns the builder to Empty.
func (b *Builder) Reset() {
	b.color = nil
	b.size = nil
	b.quantity = 0
	b.requiredDate = nil
}
