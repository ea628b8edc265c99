package model

// ItemPatch carries the client-writable fields of an item update. Server-owned
// fields (image path, vote counters, membership sets) have no representation
// here, so a request body cannot smuggle them into the record.
type ItemPatch struct {
	Name         *string `json:"name"`
	Manufacturer *string `json:"manufacturer"`
	Description  *string `json:"description"`
	Category     *string `json:"category"`
	Intensity    *int    `json:"intensity"`
}

// Apply merges the set fields of the patch into the item.
func (p *ItemPatch) Apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Manufacturer != nil {
		item.Manufacturer = *p.Manufacturer
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Intensity != nil {
		item.Intensity = *p.Intensity
	}
}
