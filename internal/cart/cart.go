package cart

import "time"

// Cart is the ordered set of lines for one browsing session. Insertion order
// is display order.
type Cart struct {
	SessionID string    `json:"session_id" bson:"_id"`
	Lines     []Line    `json:"lines" bson:"lines"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Line is one (product, color) entry in the cart. Name, price and image are
// snapshotted at add time; later catalog changes do not touch existing lines.
type Line struct {
	ProductID int64     `json:"product_id" bson:"product_id"`
	Color     string    `json:"color" bson:"color"`
	Name      string    `json:"name" bson:"name"`
	Price     float64   `json:"price" bson:"price"`
	ImageURL  string    `json:"image_url" bson:"image_url"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	AddedAt   time.Time `json:"added_at" bson:"added_at"`
}

func (l Line) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Total is recomputed from the lines on every call, never cached.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}

func (c *Cart) findLine(productID int64, color string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID && l.Color == color {
			return i
		}
	}
	return -1
}
