package product

import "github.com/shopspring/decimal"

type Availability string

const (
	InStock    Availability = "In Stock"
	Limited    Availability = "Limited"
	OutOfStock Availability = "Out of Stock"
)

// Product is a catalog entry. Price is the USD base price; DisplayPriceINR, when
// set, overrides the converted INR price shown to customers.
type Product struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	GenericName     string           `json:"genericName"`
	Manufacturer    string           `json:"manufacturer"`
	Category        string           `json:"category"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	DisplayPriceINR *decimal.Decimal `json:"displayPriceInr,omitempty"`
	Availability    Availability     `json:"availability"`
	Featured        bool             `json:"featured"`
}
