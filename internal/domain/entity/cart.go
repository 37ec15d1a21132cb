package entity

// CartItem is one resolved (food, quantity, store) line of an order.
// ProductID and Price stay nil until the catalog enrichment step matches the
// free-text food name against the product index; the extraction core itself
// never fills them.
type CartItem struct {
	Food      string   `json:"food"`
	Qty       int      `json:"qty"`
	Store     string   `json:"store,omitempty"`
	ProductID *string  `json:"product_id,omitempty"`
	Price     *float64 `json:"price,omitempty"`
}

// Validate checks the structural invariants of the cart item.
func (c CartItem) Validate() error {
	if c.Food == "" {
		return &ValidationError{Field: "food", Message: "food text is required"}
	}
	if c.Qty < 1 {
		return &ValidationError{Field: "qty", Message: "quantity must be a positive integer"}
	}
	if c.Price != nil && *c.Price < 0 {
		return &ValidationError{Field: "price", Message: "price cannot be negative"}
	}
	return nil
}
