package order

import (
	"fmt"
	"strings"

	"github.com/growteq/storefront/pricing"
)

const (
	requiredDateLayout = "Mon, 2 Jan 2006"
	orderDateLayout    = "Monday, 2 January 2006"
	orderTimeLayout    = "03:04 PM"
	ruleWidth          = 28
)

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// Render formats an order as the staff message. Output depends only on the
// order, with dates shown in the location of CreatedAt.
func Render(o Order) string {
	var lines []string
	heavy := strings.Repeat("━", ruleWidth)
	top := "┌" + strings.Repeat("─", ruleWidth-1)
	bottom := "└" + strings.Repeat("─", ruleWidth-1)

	lines = append(lines, "*NEW FLOWER ORDER REQUEST*")
	if o.ID != "" {
		lines = append(lines, fmt.Sprintf("Order: %s", o.ID))
	}
	lines = append(lines, heavy, "")

	lines = append(lines, "*CUSTOMER DETAILS*", top)
	lines = append(lines, fmt.Sprintf("│ Name: %s", orNA(o.Contact.Name)))
	lines = append(lines, fmt.Sprintf("│ Phone: %s", orNA(o.Contact.Phone)))
	lines = append(lines, fmt.Sprintf("│ Email: %s", orNA(o.Contact.Email)))
	lines = append(lines, bottom, "")

	lines = append(lines, "*ORDER ITEMS*", heavy, "")
	for i, l := range o.Lines {
		lines = append(lines, fmt.Sprintf("*%d. %s*", i+1, l.Name))
		if l.Color != nil {
			lines = append(lines, fmt.Sprintf("   Color: %s", l.Color.Name))
		}
		unit := "pcs"
		if l.Size != nil {
			lines = append(lines, fmt.Sprintf("   Size: %s", l.Size.Label))
			unit = "stems"
		}
		lines = append(lines, fmt.Sprintf("   Qty: %d %s", l.Quantity, unit))
		if tier := pricing.FormatDiscount(pricing.TierDiscount(l.Quantity)); tier != "" {
			lines = append(lines, fmt.Sprintf("   Volume discount: %s", tier))
		}
		if !l.RequiredDate.IsZero() {
			lines = append(lines, fmt.Sprintf("   Required: %s", l.RequiredDate.Format(requiredDateLayout)))
		}
		lines = append(lines, "")
	}
	lines = append(lines, heavy)
	lines = append(lines, fmt.Sprintf("Total stems: %d", o.TotalStems), "")

	lines = append(lines, "*DELIVERY DETAILS*", top)
	if o.Delivery.Type == DeliveryHome {
		lines = append(lines, "│ Type: Home Delivery")
		if a := o.Delivery.Address; a != nil {
			lines = append(lines, "│", "│ *Address:*")
			lines = append(lines, fmt.Sprintf("│ %s", a.Street))
			if a.Landmark != "" {
				lines = append(lines, fmt.Sprintf("│ Near: %s", a.Landmark))
			}
			lines = append(lines, fmt.Sprintf("│ %s, %s", a.City, a.State))
			lines = append(lines, fmt.Sprintf("│ PIN: %s", a.Pincode))
		}
	} else {
		lines = append(lines, "│ Type: Store Pickup")
	}
	lines = append(lines, bottom, "")

	if o.Delivery.Notes != "" {
		lines = append(lines, "*SPECIAL INSTRUCTIONS*", top)
		lines = append(lines, fmt.Sprintf("│ %s", o.Delivery.Notes))
		lines = append(lines, bottom, "")
	}

	lines = append(lines, heavy)
	lines = append(lines, fmt.Sprintf("Order Date: %s", o.CreatedAt.Format(orderDateLayout)))
	lines = append(lines, fmt.Sprintf("Time: %s", o.CreatedAt.Format(orderTimeLayout)), "")
	lines = append(lines, "_Thank you for choosing Growteq Flowers!_")
	lines = append(lines, "_Pricing will be confirmed by our team shortly._")

	return strings.Join(lines, "\n")
}
