package domain

// ResolvedContext holds the canonical ERP codes chosen for one attempt.
// It is never persisted.
type ResolvedContext struct {
	CustomerCode        string   `json:"customerCode"`
	CustomerWasMatched  bool     `json:"customerWasMatched"`
	SellerCode          int      `json:"sellerCode"`
	WarehouseCode       string   `json:"warehouseCode"`
	WarehouseWasMatched bool     `json:"warehouseWasMatched"`
	ItemsMissingStock   []string `json:"itemsMissingStock,omitempty"`
	Warnings            []string `json:"warnings,omitempty"`
}
