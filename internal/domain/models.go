package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Product is a catalog product as served by the inventory service.
type Product struct {
	ID          int64       `json:"id"`
	Name        string      `json:"nombre"`
	Description string      `json:"descripcion,omitempty"`
	Price       FlexFloat   `json:"precio"`
	Stock       int         `json:"stock"`
	Category    CategoryRef `json:"categoria"`
	Image       string      `json:"imagen,omitempty"`
}

// Category is a catalog category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// CartLine is one product's aggregated quantity inside a cart.
// Price, name and category are snapshots taken when the line was created;
// they are never refreshed from the catalog.
type CartLine struct {
	ProductID    int64   `json:"product_id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
	Subtotal     float64 `json:"subtotal"`
	StockCeiling int     `json:"stock_ceiling"`
}

// PurchaseItem is one line of a purchase request, in the inventory
// service's wire shape.
type PurchaseItem struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"cantidad"`
}

// DailyStats holds the per-date visit and sale counters.
type DailyStats struct {
	Visits int `json:"visitas"`
	Sales  int `json:"ventas"`
}

// User is the locally cached user snapshot.
type User struct {
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}

// FlexFloat accepts JSON numbers that the upstream serializer may quote
// (decimal fields arrive as strings).
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*f = FlexFloat(v)
	return nil
}

// CategoryRef accepts the category field in any of the shapes the service
// emits: a bare string, a numeric id, or an object {id, nombre}.
type CategoryRef struct {
	ID   int64
	Name string
}

func (c *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &c.Name)
	case '{':
		var obj struct {
			ID   int64  `json:"id"`
			Name string `json:"nombre"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		c.ID = obj.ID
		c.Name = obj.Name
		return nil
	default:
		return json.Unmarshal(data, &c.ID)
	}
}

func (c CategoryRef) MarshalJSON() ([]byte, error) {
	if c.Name != "" {
		return json.Marshal(struct {
			ID   int64  `json:"id,omitempty"`
			Name string `json:"nombre"`
		}{c.ID, c.Name})
	}
	return json.Marshal(c.ID)
}

// String returns the display name of the category, falling back to the id.
func (c CategoryRef) String() string {
	if c.Name != "" {
		return c.Name
	}
	if c.ID != 0 {
		return strconv.FormatInt(c.ID, 10)
	}
	return ""
}
