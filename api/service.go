// Package api serves the storefront core to the mobile client as the gRPC
// service growteq.storefront.v1.Storefront. Payloads are
// google.protobuf.Struct messages shaped like the catalog and order JSON.
package api

import (
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/growteq/storefront/catalog"
	"github.com/growteq/storefront/checkout"
	"github.com/growteq/storefront/messaging"
	"github.com/growteq/storefront/order"
	"github.com/growteq/storefront/session"
	"github.com/growteq/storefront/storefront"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "growteq.storefront.v1.Storefront"

// Method names.
const (
	MethodListCategories     = "ListCategories"
	MethodListProducts       = "ListProducts"
	MethodGetProduct         = "GetProduct"
	MethodPreviewSelection   = "PreviewSelection"
	MethodConfirmSelection   = "ConfirmSelection"
	MethodGetCart            = "GetCart"
	MethodRemoveLine         = "RemoveLine"
	MethodUpdateLineQuantity = "UpdateLineQuantity"
	MethodClearCart          = "ClearCart"
	MethodQuoteCart          = "QuoteCart"
	MethodSubmitOrder        = "SubmitOrder"
	MethodResendOrderMessage = "ResendOrderMessage"
	MethodListOrders         = "ListOrders"
	MethodGetOrder           = "GetOrder"
)

// Config tunes a Service. Zero values take the defaults.
type Config struct {
	// Destination is the staff messaging number used in returned links.
	Destination string
	// Location is the shop's time zone, used for required dates.
	Location *time.Location
	Now      func() time.Time
	Logger   *zap.Logger
}

// Service implements the Storefront RPCs.
type Service struct {
	catalog     *catalog.Index
	sessions    *session.Registry
	checkout    *checkout.Service
	orders      order.Repository
	destination string
	loc         *time.Location
	now         func() time.Time
	logger      *zap.Logger
}

// NewService creates the Storefront service.
func NewService(ix *catalog.Index, sessions *session.Registry, co *checkout.Service, orders order.Repository, cfg Config) *Service {
	if cfg.Destination == "" {
		cfg.Destination = messaging.DefaultDestination
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Service{
		catalog:     ix,
		sessions:    sessions,
		checkout:    co,
		orders:      orders,
		destination: cfg.Destination,
		loc:         cfg.Location,
		now:         cfg.Now,
		logger:      cfg.Logger,
	}
}

// Router returns the method table of the Storefront service.
func Router() *storefront.MethodRouter[*Service] {
	return storefront.NewMethodRouter[*Service](ServiceName).
		On(MethodListCategories, unary(listCategories)).
		On(MethodListProducts, unary(listProducts)).
		On(MethodGetProduct, unary(getProduct)).
		On(MethodPreviewSelection, unary(previewSelection)).
		On(MethodConfirmSelection, unary(confirmSelection)).
		On(MethodGetCart, unary(getCart)).
		On(MethodRemoveLine, unary(removeLine)).
		On(MethodUpdateLineQuantity, unary(updateLineQuantity)).
		On(MethodClearCart, unary(clearCart)).
		On(MethodQuoteCart, unary(quoteCart)).
		On(MethodSubmitOrder, unary(submitOrder)).
		On(MethodResendOrderMessage, unary(resendOrderMessage)).
		On(MethodListOrders, unary(listOrders)).
		On(MethodGetOrder, unary(getOrder))
}

// Register adds the service to a gRPC server. It satisfies storefront.RegisterFunc.
func (s *Service) Register(server *grpc.Server) {
	server.RegisterService(Router().ServiceDesc(), s)
}
