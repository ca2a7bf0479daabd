package cart

// Snapshot is the serializable state of a Store.
type Snapshot struct {
	Items       []LineItem `json:"items"`
	CartOpen    bool       `json:"cart_open"`
	PaymentOpen bool       `json:"payment_open"`
}

func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Items:       s.Items(),
		CartOpen:    s.cartOpen,
		PaymentOpen: s.paymentOpen,
	}
}

// Restore rebuilds a Store from a snapshot. Duplicate product lines are merged
// so a hand-edited snapshot cannot break the one-line-per-product rule.
func Restore(snap Snapshot) *Store {
	s := NewStore()
	for _, item := range snap.Items {
		if i := s.indexOf(item.Product.ID); i >= 0 {
			s.items[i].Kg = s.items[i].Kg.Add(item.Kg)
			continue
		}
		s.items = append(s.items, item)
	}
	s.cartOpen = snap.CartOpen
	s.paymentOpen = snap.PaymentOpen
	return s
}
