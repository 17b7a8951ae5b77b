package model

type Drop struct {
	ID              int64  `json:"id"`
	CreatedAt       string `json:"created_at"`
	Kind            string `json:"kind"`
	Funder          string `json:"funder"`
	AmountPerClaim  string `json:"amount_per_claim,omitempty"`
	AssetContract   string `json:"asset_contract,omitempty"`
	Funded          bool   `json:"funded"`
	TokenID         string `json:"token_id,omitempty"`
	RemainingClaims int64  `json:"remaining_claims"`
}

type CreateNearDropRequest struct {
	AmountPerClaim  string   `json:"amount_per_claim"`
	PublicKeys      []string `json:"public_keys"`
	AttachedDeposit string   `json:"attached_deposit"`
}

type CreateNearDropResponse struct {
	DropID          int64  `json:"drop_id"`
	RequiredDeposit string `json:"required_deposit"`
	Refund          string `json:"refund"`
}

type CreateFTDropRequest struct {
	AssetContract   string   `json:"asset_contract"`
	AmountPerClaim  string   `json:"amount_per_claim"`
	PublicKeys      []string `json:"public_keys"`
	AttachedDeposit string   `json:"attached_deposit"`
}

type CreateFTDropResponse struct {
	DropID          int64  `json:"drop_id"`
	RequiredDeposit string `json:"required_deposit"`
	Refund          string `json:"refund"`
}

type CreateNFTDropRequest struct {
	AssetContract   string `json:"asset_contract"`
	PublicKey       string `json:"public_key"`
	AttachedDeposit string `json:"attached_deposit"`
}

type CreateNFTDropResponse struct {
	DropID          int64  `json:"drop_id"`
	RequiredDeposit string `json:"required_deposit"`
	Refund          string `json:"refund"`
}

type DeleteDropByIDRequest struct {
	DropID int64 `json:"drop_id"`
}

type DeleteDropByIDResponse struct {
	Refund string `json:"refund"`
}

type GetDropByIDRequest struct {
	DropID int64 `form:"drop_id"`
}

type GetDropByIDResponse struct {
	Drop Drop `json:"drop"`
}

type GetDropIDByKeyRequest struct {
	PublicKey string `form:"public_key"`
}

type GetDropIDByKeyResponse struct {
	DropID int64 `json:"drop_id"`
}

type FTOnTransferRequest struct {
	SenderID string `json:"sender_id"`
	Amount   string `json:"amount"`
	Msg      string `json:"msg"`
}

// FTOnTransferResponse echoes the unused part of the transferred amount
// back to the token custodian, following its transfer-and-call convention.
type FTOnTransferResponse struct {
	UnusedAmount string `json:"unused_amount"`
}

type NFTOnApproveRequest struct {
	TokenID    string `json:"token_id"`
	OwnerID    string `json:"owner_id"`
	ApprovalID uint64 `json:"approval_id"`
	Msg        string `json:"msg"`
}

type NFTOnApproveResponse struct{}
