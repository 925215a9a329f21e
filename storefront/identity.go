package storefront

import (
	"github.com/google/uuid"
)

// CartLineNamespace is the UUID namespace for deterministic cart line ids.
var CartLineNamespace = uuid.MustParse("3f1c7e52-8a41-5d0b-9c6e-2b7f40d1a9e3")

// ComputeRoot derives a deterministic UUID v5 from a domain and business key.
//
// The UUID is derived from: hash("growteq" + domain + business_key) using the
// OID namespace.
func ComputeRoot(domain, businessKey string) uuid.UUID {
	seed := "growteq" + domain + businessKey
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
}

// LineKey builds the cart identity key for a product/color/size combination.
// Empty color or size ids are part of the key, so "no color" is its own identity.
func LineKey(productID, colorID, sizeID string) string {
	return productID + "|" + colorID + "|" + sizeID
}

// LineID returns the deterministic line id for a cart identity key.
//
// Re-adding the same product/color/size always yields the same id, so a
// replaced line keeps its id and clients can keep referring to it.
func LineID(productID, colorID, sizeID string) uuid.UUID {
	return uuid.NewSHA1(CartLineNamespace, []byte(LineKey(productID, colorID, sizeID)))
}

// CustomerRoot computes a deterministic root UUID for a customer, used to key
// per-user local storage.
func CustomerRoot(userID string) uuid.UUID {
	return ComputeRoot("customer", userID)
}

// NewOrderID returns a fresh random order id.
func NewOrderID() string {
	return uuid.NewString()
}
