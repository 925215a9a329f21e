package catalog

import "strconv"

func color(id, name, hex, image string) FlowerColor {
	return FlowerColor{ID: id, Name: name, Hex: hex, Image: image}
}

func bicolor(id, name, hex, second, image string) FlowerColor {
	return FlowerColor{ID: id, Name: name, Hex: hex, Bicolor: second, Image: image}
}

func multicolor(id, name, image string) FlowerColor {
	return FlowerColor{ID: id, Name: name, Hex: "#FF0000", Multicolor: true, Image: image}
}

func size(id string, cm int, multiplier float64) StemSize {
	return StemSize{ID: id, Label: strconv.Itoa(cm) + " cm", LengthCm: cm, PriceMultiplier: multiplier}
}

func builtinColors() map[string][]FlowerColor {
	return map[string][]FlowerColor{
		"roses": {
			color("red", "Red", "#DC143C", "/red-roses-bouquet.jpg"),
			color("white", "White", "#FFFAFA", "/white-roses-bouquet.jpg"),
			color("pink", "Pink", "#FFB6C1", "/pink-roses-bouquet.jpg"),
			color("yellow", "Yellow", "#FFD700", "/yellow-roses-bouquet.jpg"),
			color("orange", "Orange", "#FF8C00", "/orange-roses-bouquet.jpg"),
			color("peach", "Peach", "#FFDAB9", "/peach-roses-bouquet.jpg"),
			color("lavender", "Lavender", "#E6E6FA", "/lavender-roses-bouquet.jpg"),
			color("burgundy", "Burgundy", "#800020", "/burgundy-roses-bouquet.jpg"),
			bicolor("bicolor-red-white", "Red & White", "#DC143C", "#FFFAFA", "/bicolor-red-white-roses-bouquet.jpg"),
			bicolor("bicolor-pink-white", "Pink & White", "#FFB6C1", "#FFFAFA", "/bicolor-pink-white-roses-bouquet.jpg"),
		},
		"chrysanthemums": {
			color("white", "White", "#FFFAFA", "/white-chrysanthemum-flowers-bouquet.jpg"),
			color("yellow", "Yellow", "#FFD700", "/yellow-chrysanthemum-flowers-bouquet.jpg"),
			color("hot-pink", "Hot Pink", "#FF69B4", "/hot-pink-chrysanthemum-flowers-bouquet.jpg"),
			bicolor("bicolor", "Bicolor Maroon/White", "#800000", "#FFFAFA", "/bicolor-maroon-white-chrysanthemum-flowers-bouquet.jpg"),
			color("green", "Green", "#90EE90", "/green-chrysanthemum-flowers-bouquet.jpg"),
			color("golden-yellow", "Golden Yellow", "#DAA520", "/golden-yellow-chrysanthemum-flowers-bouquet.jpg"),
		},
		"gypsophila": {
			color("white", "White", "#FFFAFA", "/white-gypsophila-bouquet.jpg"),
			color("pink", "Pink", "#FFB6C1", "/pink-gypsophila-bouquet.jpg"),
			color("purple", "Purple", "#9370DB", "/purple-gypsophila-bouquet.jpg"),
			color("blue", "Blue", "#6495ED", "/blue-gypsophila-bouquet.jpg"),
			multicolor("rainbow", "Rainbow Mix", "/rainbow-gypsophila-bouquet.jpg"),
		},
		"lisianthus": {
			color("white", "White", "#FFFAFA", "/white-lisianthus-bouquet.jpg"),
			color("purple", "Purple", "#9370DB", "/purple-lisianthus-bouquet.jpg"),
			color("champagne", "Champagne", "#F7E7CE", "/champagne-lisianthus-bouquet.jpg"),
			bicolor("bicolor-purple", "Bicolor Purple", "#9370DB", "#FFFAFA", "/bicolor-purple-lisianthus-bouquet.jpg"),
		},
		"limonium": {
			color("purple", "Purple", "#9370DB", "/purple-limonium-bouquet.jpg"),
			color("white", "White", "#FFFAFA", "/white-limonium-bouquet.jpg"),
			color("blue", "Blue", "#6495ED", "/blue-limonium-bouquet.jpg"),
			multicolor("mixed", "Mixed", "/mixed-limonium-bouquet.jpg"),
		},
		"carnation": {
			color("red", "Red", "#DC143C", "/red-carnation-bouquet.jpg"),
			color("white", "White", "#FFFAFA", "/white-carnation-bouquet.jpg"),
			color("pink", "Pink", "#FFB6C1", "/pink-carnation-bouquet.jpg"),
			color("burgundy", "Burgundy", "#800020", "/burgundy-carnation-bouquet.jpg"),
			bicolor("bicolor-red", "Bicolor Red", "#DC143C", "#FFFAFA", "/bicolor-red-carnation-bouquet.jpg"),
		},
		"eucalyptus": {
			color("silver-dollar", "Silver Dollar", "#C0C0C0", "/silver-dollar-eucalyptus.jpg"),
			color("seeded", "Seeded", "#808080", "/seeded-eucalyptus.jpg"),
			color("baby-blue", "Baby Blue", "#89CFF0", "/baby-blue-eucalyptus.jpg"),
		},
		"song-of-india": {
			bicolor("green-yellow", "Green & Yellow", "#9ACD32", "#FFD700", "/green-yellow-song-of-india.jpg"),
			color("green", "Green", "#228B22", "/green-song-of-india.jpg"),
		},
		"song-of-jamaica": {
			color("green", "Green", "#228B22", "/green-song-of-jamaica.jpg"),
			color("dark-green", "Dark Green", "#006400", "/dark-green-song-of-jamaica.jpg"),
		},
		"eustoma": {
			color("white", "White", "#FFFAFA", "/white-eustoma-bouquet.jpg"),
			color("pink", "Pink", "#FFB6C1", "/pink-eustoma-bouquet.jpg"),
			bicolor("bicolor-pink", "Bicolor Pink", "#FFB6C1", "#FFFAFA", "/bicolor-pink-eustoma-bouquet.jpg"),
		},
	}
}

func builtinStemSizes() map[string][]StemSize {
	return map[string][]StemSize{
		"roses": {
			size("small", 40, 1.0), size("medium", 50, 1.2), size("large", 60, 1.4),
			size("premium", 70, 1.6), size("extra", 80, 1.8),
		},
		"chrysanthemums": {
			size("small", 50, 1.0), size("medium", 60, 1.15), size("large", 70, 1.3), size("premium", 80, 1.45),
		},
		"gypsophila": {
			size("small", 40, 1.0), size("medium", 50, 1.2), size("large", 60, 1.4),
		},
		"lisianthus": {
			size("small", 40, 1.0), size("medium", 50, 1.2), size("large", 60, 1.4), size("premium", 70, 1.6),
		},
		"carnation": {
			size("small", 40, 1.0), size("medium", 50, 1.15), size("large", 60, 1.3), size("premium", 70, 1.45),
		},
		"eucalyptus": {
			size("small", 40, 1.0), size("medium", 50, 1.1), size("large", 60, 1.2), size("premium", 70, 1.3),
		},
		"eustoma": {
			size("small", 40, 1.0), size("medium", 50, 1.2), size("large", 60, 1.4), size("premium", 70, 1.6),
		},
		DefaultSizeSet: DefaultStemSizes(),
	}
}

func builtinCategories() []Category {
	return []Category{
		{ID: "roses", Name: "Roses", Icon: "flower", Description: "Premium quality roses", Order: 1},
		{ID: "chrysanthemums", Name: "Chrysanthemums", Icon: "flower-outline", Description: "Fresh chrysanthemums", Order: 2},
		{ID: "gypsophila", Name: "Gypsophila", Icon: "flower-tulip", Description: "Baby's breath flowers", Order: 3},
		{ID: "lisianthus", Name: "Lisianthus", Icon: "flower-poppy", Description: "Elegant lisianthus", Order: 4},
		{ID: "limonium", Name: "Limonium", Icon: "flower-outline", Description: "Statice flowers", Order: 5},
		{ID: "carnation", Name: "Carnation", Icon: "flower", Description: "Colorful carnations", Order: 6},
		{ID: "eucalyptus", Name: "Eucalyptus", Icon: "leaf", Description: "Fresh eucalyptus greens", Order: 7},
		{ID: "song-of-india", Name: "Song of India", Icon: "palm-tree", Description: "Decorative foliage", Order: 8},
		{ID: "song-of-jamaica", Name: "Song of Jamaica", Icon: "palm-tree", Description: "Tropical foliage", Order: 9},
		{ID: "eustoma", Name: "Eustoma", Icon: "flower-tulip", Description: "Beautiful eustoma", Order: 10},
	}
}

func product(id, name, flowerType, description string, featured bool, rating float64, reviews int, tags ...string) Product {
	return Product{
		ID:          id,
		Name:        name,
		Type:        flowerType,
		CategoryID:  flowerType,
		Description: description,
		Unit:        "stem",
		InStock:     true,
		Featured:    featured,
		Rating:      rating,
		ReviewCount: reviews,
		Tags:        tags,
	}
}

func builtinProducts() []Product {
	return []Product{
		product("rose-red", "Red Roses", "roses",
			"Premium quality red roses, perfect for expressing love and passion. Fresh cut with long-lasting beauty.",
			true, 4.8, 256, "bestseller", "romantic", "premium"),
		product("rose-white", "White Roses", "roses",
			"Pure white roses symbolizing innocence and elegance. Perfect for weddings and special occasions.",
			true, 4.7, 189, "wedding", "elegant", "premium"),
		product("rose-pink", "Pink Roses", "roses",
			"Delicate pink roses representing grace and gratitude. A gentle expression of admiration.",
			false, 4.6, 142, "gentle", "gratitude"),
		product("chrys-white", "White Chrysanthemums", "chrysanthemums",
			"Classic white chrysanthemums with full blooms. Long-lasting and versatile for any arrangement.",
			true, 4.6, 167, "classic", "versatile"),
		product("chrys-yellow", "Yellow Chrysanthemums", "chrysanthemums",
			"Vibrant yellow chrysanthemums bringing sunshine to any space.",
			false, 4.5, 89, "bright", "cheerful"),
		product("gyps-white", "White Gypsophila", "gypsophila",
			"Delicate white baby's breath, perfect as filler or standalone bouquets.",
			true, 4.7, 234, "filler", "delicate", "popular"),
		product("gyps-rainbow", "Rainbow Gypsophila", "gypsophila",
			"Colorful mix of tinted gypsophila in multiple colors.",
			true, 4.8, 178, "colorful", "trending"),
		product("lisi-white", "White Lisianthus", "lisianthus",
			"Elegant white lisianthus with rose-like petals.",
			true, 4.9, 145, "premium", "elegant"),
		product("limo-purple", "Purple Limonium", "limonium",
			"Classic purple statice, excellent as filler flower.",
			false, 4.5, 98, "filler", "dried"),
		product("carn-red", "Red Carnation", "carnation",
			"Classic red carnations, long-lasting and vibrant.",
			true, 4.6, 189, "classic", "long-lasting"),
		product("euca-silver", "Silver Dollar Eucalyptus", "eucalyptus",
			"Popular eucalyptus with round silver-green leaves.",
			true, 4.8, 267, "popular", "greenery"),
		product("soi-variegated", "Song of India", "song-of-india",
			"Variegated foliage with green and yellow stripes.",
			false, 4.5, 78, "foliage", "tropical"),
		product("soj-green", "Song of Jamaica", "song-of-jamaica",
			"Lush green tropical foliage for arrangements.",
			false, 4.4, 56, "foliage", "tropical"),
		product("eust-white", "White Eustoma", "eustoma",
			"Delicate white eustoma flowers, similar to lisianthus.",
			true, 4.8, 134, "delicate", "premium"),
	}
}
