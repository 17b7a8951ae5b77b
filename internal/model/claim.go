package model

type ClaimForRequest struct {
	DestinationAccountID string `json:"destination_account_id"`
}

type ClaimForResponse struct {
	DropID int64 `json:"drop_id"`
	CallID int64 `json:"call_id"`
}

type CreateAccountAndClaimRequest struct {
	NewAccountID string `json:"new_account_id"`
}

type CreateAccountAndClaimResponse struct {
	CallID int64 `json:"call_id"`
}

type ResolveClaimRequest struct {
	CallID  int64 `json:"call_id"`
	Success bool  `json:"success"`
}

type ResolveClaimResponse struct{}

type ResolveAccountCreateRequest struct {
	CallID  int64 `json:"call_id"`
	Created bool  `json:"created"`
}

type ResolveAccountCreateResponse struct{}

// ClaimOutcome is the payload published on the outcome topic by the host
// watcher, mirroring the resolution entry points for deployments that
// deliver outcomes over the broker instead of callbacks.
type ClaimOutcome struct {
	CallID  int64  `json:"call_id"`
	Type    string `json:"type"`
	Success bool   `json:"success"`
}

const (
	ClaimOutcomeTransfer      = "transfer"
	ClaimOutcomeAccountCreate = "account_create"
)
