package request

// PurchaseRequest is the request body for buying a cosmetic
type PurchaseRequest struct {
	CosmeticID string `json:"cosmeticId"`
}
