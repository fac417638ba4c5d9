package dto

// PurchaseRequest is the JSON body for POST /billing/purchase.
type PurchaseRequest struct {
	PackageID string `json:"package_id" binding:"required"`
}
