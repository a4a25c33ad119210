package terminal

import "github.com/umami-pos/api/internal/cart"

// Snapshot is the read-only view of a session.
type Snapshot struct {
	ID              string          `json:"id"`
	Items           []cart.LineItem `json:"items"`
	Total           string          `json:"total"`
	SelectedItem    string          `json:"selected_item,omitempty"`
	PendingQuantity string          `json:"pending_quantity,omitempty"`
	Checkout        *CheckoutView   `json:"checkout,omitempty"`
}

// CheckoutView is the confirmation dialog, present while it is open.
type CheckoutView struct {
	PayerName  string `json:"payer_name"`
	TaxID      string `json:"tax_id"`
	Tendered   string `json:"tendered"`
	Total      string `json:"total"`
	Change     string `json:"change"`
	Table      int    `json:"table,omitempty"`
	Takeaway   bool   `json:"takeaway"`
	Tables     int    `json:"tables"`
	CanConfirm bool   `json:"can_confirm"`
}

func (s *Session) snapshot() Snapshot {
	total := s.cart.Total()
	selected, pending := s.entry.Pending()
	snap := Snapshot{
		ID:              s.ID,
		Items:           s.cart.Items(),
		Total:           total.StringFixed(2),
		SelectedItem:    selected,
		PendingQuantity: pending,
	}
	if form := s.dialog.Selected(); form != nil {
		dest := form.Destination()
		snap.Checkout = &CheckoutView{
			PayerName:  form.PayerName,
			TaxID:      form.TaxID,
			Tendered:   form.TenderedText(),
			Total:      total.StringFixed(2),
			Change:     form.Change(total),
			Table:      dest.Table,
			Takeaway:   dest.Takeaway,
			Tables:     form.TableCount(),
			CanConfirm: form.CanConfirm(),
		}
	}
	return snap
}
