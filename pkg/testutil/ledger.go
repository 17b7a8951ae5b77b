package testutil

import (
	"context"
	"math/big"
)

// LedgerCall records one outbound call dispatched through the mock.
type LedgerCall struct {
	Method    string
	CallID    int64
	Recipient string
	Contract  string
	TokenID   string
	AccountID string
	PublicKey string
	Amount    *big.Int
}

// MockLedgerCaller records every dispatched call. Set a Func field to
// inject a connector failure for that method.
type MockLedgerCaller struct {
	Calls []LedgerCall

	TransferFunc      func(ctx context.Context, callID int64, recipient string, amount *big.Int) error
	CreateAccountFunc func(ctx context.Context, callID int64, accountID, publicKey string) error
	ClaimFTFunc       func(ctx context.Context, callID int64, ftContract, recipient string, amount *big.Int) error
	TransferFTFunc    func(ctx context.Context, callID int64, ftContract, recipient string, amount *big.Int) error
	TransferNFTFunc   func(ctx context.Context, callID int64, nftContract, tokenID, recipient string) error
}

func (m *MockLedgerCaller) Transfer(
	ctx context.Context, callID int64, recipient string, amount *big.Int,
) error {
	if m.TransferFunc != nil {
		if err := m.TransferFunc(ctx, callID, recipient, amount); err != nil {
			return err
		}
	}

	m.Calls = append(m.Calls, LedgerCall{
		Method:    "transfer",
		CallID:    callID,
		Recipient: recipient,
		Amount:    new(big.Int).Set(amount),
	})

	return nil
}

func (m *MockLedgerCaller) CreateAccount(
	ctx context.Context, callID int64, accountID, publicKey string,
) error {
	if m.CreateAccountFunc != nil {
		if err := m.CreateAccountFunc(ctx, callID, accountID, publicKey); err != nil {
			return err
		}
	}

	m.Calls = append(m.Calls, LedgerCall{
		Method:    "createAccount",
		CallID:    callID,
		AccountID: accountID,
		PublicKey: publicKey,
	})

	return nil
}

func (m *MockLedgerCaller) ClaimFT(
	ctx context.Context, callID int64, ftContract, recipient string, amount *big.Int,
) error {
	if m.ClaimFTFunc != nil {
		if err := m.ClaimFTFunc(ctx, callID, ftContract, recipient, amount); err != nil {
			return err
		}
	}

	m.Calls = append(m.Calls, LedgerCall{
		Method:    "claimFT",
		CallID:    callID,
		Contract:  ftContract,
		Recipient: recipient,
		Amount:    new(big.Int).Set(amount),
	})

	return nil
}

func (m *MockLedgerCaller) TransferFT(
	ctx context.Context, callID int64, ftContract, recipient string, amount *big.Int,
) error {
	if m.TransferFTFunc != nil {
		if err := m.TransferFTFunc(ctx, callID, ftContract, recipient, amount); err != nil {
			return err
		}
	}

	m.Calls = append(m.Calls, LedgerCall{
		Method:    "transferFT",
		CallID:    callID,
		Contract:  ftContract,
		Recipient: recipient,
		Amount:    new(big.Int).Set(amount),
	})

	return nil
}

func (m *MockLedgerCaller) TransferNFT(
	ctx context.Context, callID int64, nftContract, tokenID, recipient string,
) error {
	if m.TransferNFTFunc != nil {
		if err := m.TransferNFTFunc(ctx, callID, nftContract, tokenID, recipient); err != nil {
			return err
		}
	}

	m.Calls = append(m.Calls, LedgerCall{
		Method:    "transferNFT",
		CallID:    callID,
		Contract:  nftContract,
		TokenID:   tokenID,
		Recipient: recipient,
	})

	return nil
}

func (m *MockLedgerCaller) Close() {}

// CallsTo filters the recorded calls by method name.
func (m *MockLedgerCaller) CallsTo(method string) []LedgerCall {
	var calls []LedgerCall
	for _, call := range m.Calls {
		if call.Method == method {
			calls = append(calls, call)
		}
	}

	return calls
}
