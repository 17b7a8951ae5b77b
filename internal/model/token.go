package model

// CallerToken is issued by the host gateway for every forwarded call. The
// account id is the verified caller, the signer public key is set when the
// call was signed with a bare access key instead of a full account.
type CallerToken struct {
	AccountID       string `json:"account_id"`
	SignerPublicKey string `json:"signer_public_key"`
}
