package checkout

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidPackage indicates a package identifier outside the known set
var ErrInvalidPackage = errors.New("invalid package option")

// PackageOption is the closed set of bundle sizes offered at checkout
type PackageOption string

const (
	PackageSingle PackageOption = "1x"
	PackageDouble PackageOption = "2x"
	PackageTriple PackageOption = "3x"
	PackageQuad   PackageOption = "4x"
)

// packageTable maps each option to its quantity and percentage discount.
// The mapping is explicit; package identifiers are never parsed.
var packageTable = map[PackageOption]struct {
	quantity int
	discount int64
}{
	PackageSingle: {quantity: 10, discount: 0},
	PackageDouble: {quantity: 20, discount: 5},
	PackageTriple: {quantity: 30, discount: 10},
	PackageQuad:   {quantity: 40, discount: 15},
}

// IsValid checks if the option is a known value
func (p PackageOption) IsValid() bool {
	_, ok := packageTable[p]
	return ok
}

// String returns the string representation
func (p PackageOption) String() string {
	return string(p)
}

// ParsePackageOption validates a raw package identifier
func ParsePackageOption(raw string) (PackageOption, error) {
	p := PackageOption(raw)
	if !p.IsValid() {
		return "", ErrInvalidPackage
	}
	return p, nil
}

// Quantity returns the number of units in the package
func (p PackageOption) Quantity() (int, error) {
	entry, ok := packageTable[p]
	if !ok {
		return 0, ErrInvalidPackage
	}
	return entry.quantity, nil
}

// DiscountPercent returns the package discount as a whole percentage
func (p PackageOption) DiscountPercent() (int64, error) {
	entry, ok := packageTable[p]
	if !ok {
		return 0, ErrInvalidPackage
	}
	return entry.discount, nil
}

// Quote is a priced package offer
type Quote struct {
	Package  PackageOption
	Quantity int
	Total    decimal.Decimal
}

// QuoteFor prices a package against a per-unit base price.
// Total = basePrice * quantity * (1 - discount), rounded to two places.
func QuoteFor(p PackageOption, basePrice decimal.Decimal) (*Quote, error) {
	entry, ok := packageTable[p]
	if !ok {
		return nil, ErrInvalidPackage
	}

	factor := decimal.NewFromInt(100 - entry.discount).Div(decimal.NewFromInt(100))
	total := basePrice.
		Mul(decimal.NewFromInt(int64(entry.quantity))).
		Mul(factor).
		Round(2)

	return &Quote{
		Package:  p,
		Quantity: entry.quantity,
		Total:    total,
	}, nil
}
