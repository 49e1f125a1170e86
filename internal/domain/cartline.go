package domain

// CartLine is one product's quantity entry in the shared cart.
//
// Version is the optimistic-concurrency token: it starts at 0 on creation and
// is incremented by exactly 1 on every successful update. A conditional write
// that presents a stale version fails instead of overwriting.
type CartLine struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
	Version   int    `json:"version"`
}

// CartViewItem is a cart line enriched with live catalog data for the cart view.
// Price and name are resolved at read time, never snapshotted at add time, so
// catalog changes are reflected immediately.
type CartViewItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
	LineTotal float64 `json:"lineTotal"`
}

// CartView is the aggregate returned by the cart read use case.
type CartView struct {
	Items []CartViewItem `json:"items"`
	Total float64        `json:"total"`
}
