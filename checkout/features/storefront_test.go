package features

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/growteq/storefront/cart"
	"github.com/growteq/storefront/catalog"
	"github.com/growteq/storefront/checkout"
	"github.com/growteq/storefront/docstore"
	"github.com/growteq/storefront/localstore"
	"github.com/growteq/storefront/messaging"
	"github.com/growteq/storefront/order"
	"github.com/growteq/storefront/pricing"
	"github.com/growteq/storefront/selection"
)

const userID = "customer-1"

var (
	ist   = time.FixedZone("IST", 5*3600+1800)
	today = time.Date(2026, 3, 1, 10, 0, 0, 0, ist)
)

type switchLauncher struct {
	failing bool
	opened  []string
}

func (l *switchLauncher) CanOpen(context.Context, string) (bool, error) { return true, nil }

func (l *switchLauncher) Open(_ context.Context, link string) error {
	if l.failing {
		return errors.New("messaging app did not open")
	}
	l.opened = append(l.opened, link)
	return nil
}

type storefrontTestContext struct {
	ctx      context.Context
	product  catalog.Product
	colors   []catalog.FlowerColor
	sizes    []catalog.StemSize
	builder  *selection.Builder
	cart     *cart.Store
	repo     *docstore.Memory
	launcher *switchLauncher
	checkout *checkout.Service
	orderID  string
	err      error
}

func (c *storefrontTestContext) reset() {
	c.ctx = context.Background()
	c.product = catalog.Product{}
	c.colors = nil
	c.sizes = nil
	c.builder = nil
	c.cart = cart.Open(c.ctx, localstore.NewMemoryStore(), userID, nil)
	repo, err := docstore.NewMemory()
	if err != nil {
		panic(err)
	}
	c.repo = repo
	c.launcher = &switchLauncher{}
	c.checkout = checkout.New(c.repo, messaging.NewWhatsApp(c.launcher, "", nil), checkout.Config{
		Now: func() time.Time { return today },
	})
	c.orderID = ""
	c.err = nil
}

func (c *storefrontTestContext) selectionBuilder() *selection.Builder {
	if c.builder == nil {
		c.builder = selection.New(c.product, c.colors, c.sizes, catalog.DefaultSettings(),
			selection.WithClock(func() time.Time { return today }),
			selection.WithLocation(ist),
		)
	}
	return c.builder
}

func (c *storefrontTestContext) findLine(name string) (cart.Line, error) {
	for _, l := range c.cart.Lines() {
		if l.Name == name || l.ProductID == name {
			return l, nil
		}
	}
	return cart.Line{}, fmt.Errorf("no cart line for %q", name)
}

// Given steps

func (c *storefrontTestContext) aProductWithNoColors(name string) error {
	c.product = catalog.Product{
		ID:         strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Name:       name,
		Type:       "roses",
		CategoryID: "roses",
	}
	c.colors = nil
	return nil
}

func (c *storefrontTestContext) stemSizeWithMultiplier(id, label string, multiplier float64) error {
	c.sizes = append(c.sizes, catalog.StemSize{ID: id, Label: label, PriceMultiplier: multiplier})
	return nil
}

func (c *storefrontTestContext) anEmptyCart() error {
	if n := c.cart.LineCount(); n != 0 {
		return fmt.Errorf("expected empty cart, got %d lines", n)
	}
	return nil
}

func (c *storefrontTestContext) theMessageSenderIsFailing() error {
	c.launcher.failing = true
	return nil
}

// When steps

func (c *storefrontTestContext) iSelectSize(id string) error {
	return c.selectionBuilder().SetSize(id)
}

func (c *storefrontTestContext) iSetQuantityTo(quantity int) error {
	return c.selectionBuilder().SetQuantity(quantity)
}

func (c *storefrontTestContext) iSetTheRequiredDateToDaysFromToday(days int) error {
	c.selectionBuilder().SetRequiredDate(today.AddDate(0, 0, days))
	return nil
}

func (c *storefrontTestContext) iConfirmTheSelection() error {
	_, err := c.selectionBuilder().Confirm(c.ctx, c.cart)
	return err
}

func (c *storefrontTestContext) iAddProductWithColorAndSize(productID, color, size string, quantity, days int) error {
	return c.cart.AddOrReplace(c.ctx, cart.Line{
		ProductID:    productID,
		Name:         productID,
		Type:         "roses",
		Color:        &cart.ColorSelection{ID: color, Name: color},
		Size:         &cart.SizeSelection{ID: size, Label: size},
		Quantity:     quantity,
		RequiredDate: today.AddDate(0, 0, days),
	})
}

func (c *storefrontTestContext) iRemoveLine(lineID string) error {
	c.err = c.cart.Remove(c.ctx, lineID)
	return nil
}

func (c *storefrontTestContext) iSubmitTheOrderWithStorePickup(name string) error {
	o, err := order.Build(c.cart.Lines(), userID, order.Contact{Name: name},
		order.Delivery{Type: order.DeliveryPickup}, today)
	if err != nil {
		return err
	}
	_, c.err = c.checkout.Submit(c.ctx, c.cart, o)
	var sendErr *checkout.MessageSendError
	if errors.As(c.err, &sendErr) {
		c.orderID = sendErr.OrderID
	}
	return nil
}

func (c *storefrontTestContext) theMessageSenderRecovers() error {
	c.launcher.failing = false
	return nil
}

func (c *storefrontTestContext) iResendTheOrderMessage() error {
	_, c.err = c.checkout.ResendMessage(c.ctx, c.cart, c.orderID)
	return nil
}

// Then steps

func (c *storefrontTestContext) theCartHasLines(n int) error {
	if got := c.cart.LineCount(); got != n {
		return fmt.Errorf("expected %d cart lines, got %d", n, got)
	}
	return nil
}

func (c *storefrontTestContext) theCartLineHasQuantity(name string, quantity int) error {
	l, err := c.findLine(name)
	if err != nil {
		return err
	}
	if l.Quantity != quantity {
		return fmt.Errorf("expected quantity %d, got %d", quantity, l.Quantity)
	}
	return nil
}

func (c *storefrontTestContext) theCartLineIsRequiredInDays(name string, days int) error {
	l, err := c.findLine(name)
	if err != nil {
		return err
	}
	want := today.AddDate(0, 0, days)
	if !l.RequiredDate.Equal(want) {
		return fmt.Errorf("expected required date %s, got %s", want, l.RequiredDate)
	}
	return nil
}

func (c *storefrontTestContext) theVolumeDiscountRateIs(rate string) error {
	want, err := decimal.NewFromString(rate)
	if err != nil {
		return err
	}
	lines := c.cart.Lines()
	if len(lines) == 0 {
		return errors.New("expected a cart line")
	}
	got := pricing.TierDiscount(lines[0].Quantity)
	if !got.Equal(want) {
		return fmt.Errorf("expected discount rate %s, got %s", want, got)
	}
	return nil
}

func (c *storefrontTestContext) noErrorIsReturned() error {
	if c.err != nil {
		return fmt.Errorf("expected no error, got %v", c.err)
	}
	return nil
}

func (c *storefrontTestContext) theCartHoldsStems(n int) error {
	if got := c.cart.TotalStems(); got != n {
		return fmt.Errorf("expected %d stems, got %d", n, got)
	}
	return nil
}

func (c *storefrontTestContext) theSubmissionFailsWithAMessageSendError() error {
	var sendErr *checkout.MessageSendError
	if !errors.As(c.err, &sendErr) {
		return fmt.Errorf("expected MessageSendError, got %v", c.err)
	}
	if c.orderID == "" {
		return errors.New("expected the error to carry the order id")
	}
	return nil
}

func (c *storefrontTestContext) theOrderIsStoredOnce() error {
	orders, err := c.repo.ListByUser(c.ctx, userID)
	if err != nil {
		return err
	}
	if len(orders) != 1 {
		return fmt.Errorf("expected 1 stored order, got %d", len(orders))
	}
	if orders[0].ID != c.orderID {
		return fmt.Errorf("expected order %s, got %s", c.orderID, orders[0].ID)
	}
	return nil
}

func (c *storefrontTestContext) theOrderIsMarkedAsSent() error {
	o, err := c.repo.Get(c.ctx, c.orderID)
	if err != nil {
		return err
	}
	if !o.MessageSent {
		return errors.New("expected order message to be marked sent")
	}
	if len(c.launcher.opened) != 1 {
		return fmt.Errorf("expected 1 opened link, got %d", len(c.launcher.opened))
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &storefrontTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a product "([^"]*)" with no colors$`, tc.aProductWithNoColors)
	ctx.Step(`^stem size "([^"]*)" labelled "([^"]*)" with multiplier ([\d.]+)$`, tc.stemSizeWithMultiplier)
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^the message sender is failing$`, tc.theMessageSenderIsFailing)

	// When steps
	ctx.Step(`^I select size "([^"]*)"$`, tc.iSelectSize)
	ctx.Step(`^I set quantity to (\d+)$`, tc.iSetQuantityTo)
	ctx.Step(`^I set the required date to (\d+) days from today$`, tc.iSetTheRequiredDateToDaysFromToday)
	ctx.Step(`^I confirm the selection$`, tc.iConfirmTheSelection)
	ctx.Step(`^I add product "([^"]*)" in color "([^"]*)" and size "([^"]*)" with quantity (\d+) required in (\d+) days$`, tc.iAddProductWithColorAndSize)
	ctx.Step(`^I remove line "([^"]*)"$`, tc.iRemoveLine)
	ctx.Step(`^I submit the order for "([^"]*)" with store pickup$`, tc.iSubmitTheOrderWithStorePickup)
	ctx.Step(`^the message sender recovers$`, tc.theMessageSenderRecovers)
	ctx.Step(`^I resend the order message$`, tc.iResendTheOrderMessage)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the cart line for "([^"]*)" has quantity (\d+)$`, tc.theCartLineHasQuantity)
	ctx.Step(`^the cart line for "([^"]*)" is required in (\d+) days$`, tc.theCartLineIsRequiredInDays)
	ctx.Step(`^the volume discount rate is ([\d.]+)$`, tc.theVolumeDiscountRateIs)
	ctx.Step(`^no error is returned$`, tc.noErrorIsReturned)
	ctx.Step(`^the cart holds (\d+) stems$`, tc.theCartHoldsStems)
	ctx.Step(`^the submission fails with a message send error$`, tc.theSubmissionFailsWithAMessageSendError)
	ctx.Step(`^the order is stored once$`, tc.theOrderIsStoredOnce)
	ctx.Step(`^the order is marked as sent$`, tc.theOrderIsMarkedAsSent)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features/storefront.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
