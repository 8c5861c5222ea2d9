package purchases

// CheckoutRequest names the pack to buy through Stripe
type CheckoutRequest struct {
	PackID string `json:"pack_id" binding:"required"`
}

// CheckoutResponse carries the hosted Stripe checkout URL
type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}
