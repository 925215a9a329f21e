// Package catalog exposes the flower catalog: products, categories, and the
// color and stem-size variants of each flower type. Reads go through a
// local time-boxed cache so the storefront keeps working while the remote
// document store is unreachable.
package catalog

// DefaultSizeSet is the stem-size set used for flower types without their own.
const DefaultSizeSet = "default"

// AllCategoryID is the synthetic category that matches every product.
const AllCategoryID = "all"

// PlaceholderImage is shown when neither a color nor its product has an image.
const PlaceholderImage = "https://images.unsplash.com/photo-1518882605630-8eb548fe0eff?w=400"

// FlowerColor is one color variant of a flower type. IDs are unique within a type.
type FlowerColor struct {
	ID         string `json:"id" dynamodbav:"id"`
	Name       string `json:"name" dynamodbav:"name"`
	Hex        string `json:"hex" dynamodbav:"hex"`
	Bicolor    string `json:"bicolor,omitempty" dynamodbav:"bicolor,omitempty"`
	Multicolor bool   `json:"multicolor,omitempty" dynamodbav:"multicolor,omitempty"`
	Image      string `json:"image,omitempty" dynamodbav:"image,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty" dynamodbav:"imageUrl,omitempty"`
}

// StemSize is one stem-length variant with its price multiplier.
type StemSize struct {
	ID              string  `json:"id" dynamodbav:"id"`
	Label           string  `json:"label" dynamodbav:"label"`
	LengthCm        int     `json:"value" dynamodbav:"value"`
	PriceMultiplier float64 `json:"priceMultiplier" dynamodbav:"priceMultiplier"`
}

// Product is a sellable flower. Type keys into the color and size catalogs.
type Product struct {
	ID          string   `json:"id" dynamodbav:"id"`
	Name        string   `json:"name" dynamodbav:"name"`
	Type        string   `json:"type" dynamodbav:"type"`
	CategoryID  string   `json:"categoryId" dynamodbav:"categoryId"`
	Description string   `json:"description" dynamodbav:"description"`
	Unit        string   `json:"unit,omitempty" dynamodbav:"unit,omitempty"`
	InStock     bool     `json:"inStock" dynamodbav:"inStock"`
	Featured    bool     `json:"featured" dynamodbav:"featured"`
	Rating      float64  `json:"rating,omitempty" dynamodbav:"rating,omitempty"`
	ReviewCount int      `json:"reviews,omitempty" dynamodbav:"reviews,omitempty"`
	Tags        []string `json:"tags" dynamodbav:"tags"`
	Image       string   `json:"image,omitempty" dynamodbav:"image,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty" dynamodbav:"imageUrl,omitempty"`
	// BasePrice is an indicative per-stem price; zero means priced by staff.
	BasePrice float64 `json:"basePrice,omitempty" dynamodbav:"basePrice,omitempty"`
}

// Category groups products for navigation.
type Category struct {
	ID          string `json:"id" dynamodbav:"id"`
	Name        string `json:"name" dynamodbav:"name"`
	Icon        string `json:"icon,omitempty" dynamodbav:"icon,omitempty"`
	Description string `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Order       int    `json:"order" dynamodbav:"order"`
}

// Settings are the ordering rules configured in the catalog.
type Settings struct {
	MinimumOrderQuantity int   `json:"minimumOrderQuantity" dynamodbav:"minimumOrderQuantity"`
	QuantityOptions      []int `json:"quantityOptions" dynamodbav:"quantityOptions"`
	DeliveryMinDays      int   `json:"deliveryMinDays" dynamodbav:"deliveryMinDays"`
	DeliveryMaxDays      int   `json:"deliveryMaxDays" dynamodbav:"deliveryMaxDays"`
}

// DefaultSettings are used when the catalog carries no settings document.
func DefaultSettings() Settings {
	return Settings{
		MinimumOrderQuantity: 50,
		QuantityOptions:      []int{50, 100, 200, 500},
		DeliveryMinDays:      1,
		DeliveryMaxDays:      30,
	}
}

// withDefaults fills unset fields from DefaultSettings.
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.MinimumOrderQuantity <= 0 {
		s.MinimumOrderQuantity = d.MinimumOrderQuantity
	}
	if len(s.QuantityOptions) == 0 {
		s.QuantityOptions = d.QuantityOptions
	}
	if s.DeliveryMinDays < 0 {
		s.DeliveryMinDays = d.DeliveryMinDays
	}
	if s.DeliveryMaxDays <= 0 || s.DeliveryMaxDays < s.DeliveryMinDays {
		s.DeliveryMaxDays = d.DeliveryMaxDays
	}
	return s
}

// DefaultStemSizes is the built-in size set used when the catalog has none.
func DefaultStemSizes() []StemSize {
	return []StemSize{
		{ID: "small", Label: "40 cm", LengthCm: 40, PriceMultiplier: 1.0},
		{ID: "medium", Label: "50 cm", LengthCm: 50, PriceMultiplier: 1.15},
		{ID: "large", Label: "60 cm", LengthCm: 60, PriceMultiplier: 1.3},
	}
}

// ColorImage returns the best image reference for a color, or "".
func ColorImage(c FlowerColor) string {
	if c.ImageURL != "" {
		return c.ImageURL
	}
	return c.Image
}

// ProductImage returns the primary image for a product: the first color's
// image, then the product's own, then PlaceholderImage.
func ProductImage(p Product, colors []FlowerColor) string {
	if len(colors) > 0 {
		if img := ColorImage(colors[0]); img != "" {
			return img
		}
	}
	if p.ImageURL != "" {
		return p.ImageURL
	}
	if p.Image != "" {
		return p.Image
	}
	return PlaceholderImage
}

// FindColor returns the color with the given id.
func FindColor(colors []FlowerColor, id string) (FlowerColor, bool) {
	for _, c := range colors {
		if c.ID == id {
			return c, true
		}
	}
	return FlowerColor{}, false
}

// FindSize returns the stem size with the given id.
func FindSize(sizes []StemSize, id string) (StemSize, bool) {
	for _, s := range sizes {
		if s.ID == id {
			return s, true
		}
	}
	return StemSize{}, false
}
