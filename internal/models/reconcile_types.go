package models

// ReconciledItem is the join of one persisted Reference against the current
// catalog snapshot. Derived on every pass, never persisted.
type ReconciledItem struct {
	Reference Reference `json:"reference"`
	// Resolved is the live catalog record when the reference's id still exists
	// upstream, else nil.
	Resolved *Product `json:"resolved,omitempty"`
	// IsUnavailable is true iff Resolved is nil. Unavailable items still appear
	// in the output (rendered from the snapshot) - they are never dropped.
	IsUnavailable bool `json:"isUnavailable"`
}

// EffectivePrice is the price used for filtering and totals: the live price
// when the record resolved, else the snapshot price.
func (it *ReconciledItem) EffectivePrice() float64 {
	if it.Resolved != nil {
		return it.Resolved.EffectivePrice()
	}
	return it.Reference.Snapshot.Price
}

// SortPrice is the price used for the price sorts. Items that no longer
// resolve have no live price and sort as 0.
func (it *ReconciledItem) SortPrice() float64 {
	if it.Resolved == nil {
		return 0
	}
	return it.Resolved.EffectivePrice()
}

// Rating returns the live rating, defaulting to 0 for unresolved items.
func (it *ReconciledItem) Rating() float64 {
	if it.Resolved == nil {
		return 0
	}
	return it.Resolved.Rating
}

// DisplayName prefers the live title and falls back to the snapshot name.
func (it *ReconciledItem) DisplayName() string {
	if it.Resolved != nil {
		return it.Resolved.Title
	}
	return it.Reference.Snapshot.Name
}
