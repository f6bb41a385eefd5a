package cart

import "github.com/shopspring/decimal"

// ServiceOption is a variant of a catalog service with a price delta.
type ServiceOption struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Service is a bookable laundry service.
type Service struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Options     []ServiceOption `json:"options,omitempty"`
}

// Catalog lists the bookable services. Static for now; a merchandising
// table can replace this without changing the cart contract.
type Catalog struct {
	services []Service
	byID     map[string]Service
}

// NewCatalog builds the default service catalog.
func NewCatalog() *Catalog {
	services := []Service{
		{
			ID:          "wash-fold",
			Name:        "Wash & Fold",
			Description: "Everyday laundry washed, dried and folded.",
			Unit:        "bag",
			BasePrice:   decimal.NewFromFloat(15.00),
			Options: []ServiceOption{
				{ID: "standard", Name: "Standard (48h)", Price: decimal.Zero},
				{ID: "express", Name: "Express (24h)", Price: decimal.NewFromFloat(5.00)},
			},
		},
		{
			ID:          "wash-iron",
			Name:        "Wash & Iron",
			Description: "Washed and finished on hangers.",
			Unit:        "item",
			BasePrice:   decimal.NewFromFloat(3.50),
			Options: []ServiceOption{
				{ID: "standard", Name: "Standard (48h)", Price: decimal.Zero},
				{ID: "express", Name: "Express (24h)", Price: decimal.NewFromFloat(7.00)},
			},
		},
		{
			ID:          "dry-cleaning",
			Name:        "Dry Cleaning",
			Description: "Professional dry cleaning for delicate garments.",
			Unit:        "item",
			BasePrice:   decimal.NewFromFloat(8.95),
			Options: []ServiceOption{
				{ID: "standard", Name: "Standard (48h)", Price: decimal.Zero},
				{ID: "express", Name: "Express (24h)", Price: decimal.NewFromFloat(4.00)},
			},
		},
		{
			ID:          "ironing",
			Name:        "Ironing",
			Description: "Pressing only, returned on hangers.",
			Unit:        "item",
			BasePrice:   decimal.NewFromFloat(1.50),
		},
		{
			ID:          "duvets-bedding",
			Name:        "Duvets & Bedding",
			Description: "Deep clean for duvets, pillows and bedding.",
			Unit:        "item",
			BasePrice:   decimal.NewFromFloat(22.00),
			Options: []ServiceOption{
				{ID: "single", Name: "Single", Price: decimal.Zero},
				{ID: "double", Name: "Double", Price: decimal.NewFromFloat(4.00)},
				{ID: "king", Name: "King", Price: decimal.NewFromFloat(8.00)},
			},
		},
	}

	byID := make(map[string]Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}
	return &Catalog{services: services, byID: byID}
}

// Services returns all bookable services in display order.
func (c *Catalog) Services() []Service {
	out := make([]Service, len(c.services))
	copy(out, c.services)
	return out
}

// Service looks up a single service by id.
func (c *Catalog) Service(id string) (Service, bool) {
	svc, ok := c.byID[id]
	return svc, ok
}

// OptionPrice resolves the price delta for a service option. Unknown
// options resolve to zero so a stale cart line degrades to the base price.
func (c *Catalog) OptionPrice(serviceID, optionID string) decimal.Decimal {
	svc, ok := c.byID[serviceID]
	if !ok {
		return decimal.Zero
	}
	for _, opt := range svc.Options {
		if opt.ID == optionID {
			return opt.Price
		}
	}
	return decimal.Zero
}
