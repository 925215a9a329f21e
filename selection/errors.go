package selection

import (
	"fmt"
	"strings"
)

// Field names a selection input.
type Field string

const (
	FieldColor        Field = "color"
	FieldSize         Field = "size"
	FieldQuantity     Field = "quantity"
	FieldRequiredDate Field = "required_date"
)

// InvalidSelection lists the inputs that are unset or out of range.
type InvalidSelection struct {
	Missing []Field
}

func (e *InvalidSelection) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return "selection incomplete: missing " + strings.Join(names, ", ")
}

// BelowMinimumQuantity rejects a quantity under the catalog minimum.
type BelowMinimumQuantity struct {
	Minimum  int
	Quantity int
}

func (e *BelowMinimumQuantity) Error() string {
	return fmt.Sprintf("quantity %d is below the minimum order quantity of %d", e.Quantity, e.Minimum)
}
