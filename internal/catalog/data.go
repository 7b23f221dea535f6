package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/antonminaichev/mediexpress/internal/types/product"
)

func usd(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func inr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

// Fallback is served whenever the remote catalog is not configured or fails.
var Fallback = []product.Product{
	{
		ID: "mx-para-500", Name: "Paracetamol 500mg", GenericName: "Paracetamol", Manufacturer: "Cipla",
		Category: "Pain Relief", Description: "Fast relief from fever & mild pain. 10 tablets.",
		Price: usd("3.49"), DisplayPriceINR: inr("300"), Availability: product.InStock, Featured: true,
	},
	{
		ID: "mx-ibu-200", Name: "Ibuprofen 200mg", GenericName: "Ibuprofen", Manufacturer: "Abbott",
		Category: "Pain Relief", Description: "Pain & inflammation relief. 10 tablets.",
		Price: usd("3.49"), Availability: product.InStock, Featured: true,
	},
	{
		ID: "mx-cetz-10", Name: "Cetirizine 10mg", GenericName: "Cetirizine", Manufacturer: "Dr. Reddy's",
		Category: "Allergy", Description: "Allergy relief for sneezing and runny nose. 10 tablets.",
		Price: usd("4.25"), Availability: product.Limited,
	},
	{
		ID: "mx-omz-20", Name: "Omeprazole 20mg", GenericName: "Omeprazole", Manufacturer: "Sun Pharma",
		Category: "Digestive Health", Description: "Acidity & heartburn support. 10 capsules.",
		Price: usd("6.99"), Availability: product.InStock,
	},
	{
		ID: "mx-vita-c", Name: "Vitamin C 1000mg", GenericName: "Ascorbic Acid", Manufacturer: "Himalaya",
		Category: "Vitamins", Description: "Daily immunity support. 15 tablets.",
		Price: usd("8.5"), Availability: product.InStock, Featured: true,
	},
	{
		ID: "mx-azith-250", Name: "Azithromycin 250mg", GenericName: "Azithromycin", Manufacturer: "Pfizer",
		Category: "Antibiotics", Description: "Prescription antibiotic. Consult a doctor before use.",
		Price: usd("12.99"), Availability: product.OutOfStock,
	},
	{
		ID: "mx-orf-oral", Name: "ORS Hydration Pack", GenericName: "Oral Rehydration Salts", Manufacturer: "FDC",
		Category: "Hydration", Description: "Electrolyte hydration salts. 5 sachets.",
		Price: usd("5.25"), Availability: product.InStock,
	},
	{
		ID: "mx-antacid", Name: "Antacid Chewables", GenericName: "Calcium Carbonate", Manufacturer: "Mankind",
		Category: "Digestive Health", Description: "Quick heartburn relief. 12 chewables.",
		Price: usd("4.75"), Availability: product.Limited, Featured: true,
	},
}
