package dto

import "github.com/shopspring/decimal"

// CreateAccountRequest creates an account from a signed public key.
// Sign must be a hex RSA-PSS signature over SHA3-256(pub_key + timestamp),
// proving possession of the corresponding private key.
type CreateAccountRequest struct {
	PubKey    string `json:"pub_key" binding:"required"`
	Timestamp int64  `json:"timestamp" binding:"required"`
	Sign      string `json:"sign" binding:"required"`
}

// AccountResponse is returned after account creation.
type AccountResponse struct {
	Account string `json:"account"`
	PubKey  string `json:"pub_key"`
}

// InsecureAccountResponse carries a server-generated key pair and a ready to
// use token. Testing only: the private key travels in the response body.
type InsecureAccountResponse struct {
	Account    string `json:"account"`
	PubKey     string `json:"pub_key"`
	PrivateKey string `json:"private_key"`
	Token      string `json:"token"`
}

// BalanceResponse is the committed net balance of the calling account.
type BalanceResponse struct {
	Account string          `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}
