package dropasset

import (
	"math/big"
	"testing"

	"github.com/droplink-labs/backend/internal/entity"
	"github.com/stretchr/testify/require"
)

func Test_DropReserve(t *testing.T) {
	require.Equal(t, "970000000000000000000", DropReserve(entity.DropKindNative, 0).String())
	require.Equal(t, "1620000000000000000000", DropReserve(entity.DropKindFT, 0).String())
	require.Equal(t, "2090000000000000000000", DropReserve(entity.DropKindNFT, 0).String())

	// Each key binding adds 72 bytes.
	withKeys := DropReserve(entity.DropKindNative, 2)
	require.Equal(t, "2410000000000000000000", withKeys.String())
}

func Test_RequiredDeposit(t *testing.T) {
	amount := big.NewInt(1000)

	// Native drops escrow the amount per key on top of the reserve.
	native := RequiredDeposit(entity.DropKindNative, amount, 2)
	require.Equal(t, "808090000000000000002000", native.String())

	// Token drops are funded through their custodian, so the amount is
	// not part of the deposit.
	ft := RequiredDeposit(entity.DropKindFT, amount, 3)
	require.Equal(t, "1212300000000000000000000", ft.String())

	nft := RequiredDeposit(entity.DropKindNFT, nil, 1)
	require.Equal(t, "405650000000000000000000", nft.String())
}

func Test_ClaimRefund(t *testing.T) {
	amount := big.NewInt(500)

	testcases := []struct {
		name           string
		kind           entity.DropKind
		accountCreated bool
		dropDeleted    bool
		transferFailed bool
		expected       string
	}{
		{
			name:     "native success without account creation",
			kind:     entity.DropKindNative,
			expected: "2840000000000000000000",
		},
		{
			name:           "native failure after account creation",
			kind:           entity.DropKindNative,
			accountCreated: true,
			transferFailed: true,
			expected:       "1000000000000000000500",
		},
		{
			name:        "native success deleting the drop",
			kind:        entity.DropKindNative,
			dropDeleted: true,
			expected:    "3810000000000000000000",
		},
		{
			name:           "ft failure keeps the amount out of the refund",
			kind:           entity.DropKindFT,
			accountCreated: true,
			transferFailed: true,
			expected:       "1000000000000000000000",
		},
		{
			name:           "nft success deleting the drop",
			kind:           entity.DropKindNFT,
			accountCreated: true,
			dropDeleted:    true,
			expected:       "3090000000000000000000",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			refund := ClaimRefund(
				tc.kind, amount, tc.accountCreated, tc.dropDeleted, tc.transferFailed)
			require.Equal(t, tc.expected, refund.String())
		})
	}
}
