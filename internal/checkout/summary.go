package checkout

// Summary is the one place totals are derived. Every surface that shows a
// subtotal, fee or grand total goes through Summarize.
type Summary struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	Total       float64 `json:"total"`
}

// Summarize applies the flat delivery fee when the method is home delivery.
// Pickup costs nothing.
func Summarize(cartTotal float64, method DeliveryMethod, fee float64) Summary {
	s := Summary{Subtotal: cartTotal}
	if method == DeliveryMethodDelivery {
		s.DeliveryFee = fee
	}
	s.Total = s.Subtotal + s.DeliveryFee
	return s
}
