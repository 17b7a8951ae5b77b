package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ParseBigInt(t *testing.T) {
	b, err := ParseBigInt("1840000000000000000000")
	require.NoError(t, err)
	require.Equal(t, "1840000000000000000000", b.String())

	_, err = ParseBigInt("-1")
	require.Error(t, err)

	_, err = ParseBigInt("1.5")
	require.Error(t, err)

	_, err = ParseBigInt("")
	require.Error(t, err)
}

func Test_BigInt_ScanAndValue(t *testing.T) {
	var b BigInt
	require.NoError(t, b.Scan("400000000000000000000000"))

	v, err := b.Value()
	require.NoError(t, err)
	require.Equal(t, "400000000000000000000000", v)

	require.NoError(t, b.Scan(int64(42)))
	require.Equal(t, "42", b.String())

	require.Error(t, b.Scan(3.14))
}

func Test_BigInt_JSON(t *testing.T) {
	// Amounts above 2^53 must survive a json roundtrip, so they travel as
	// strings.
	data, err := json.Marshal(NewBigInt(7))
	require.NoError(t, err)
	require.Equal(t, `"7"`, string(data))

	var b BigInt
	require.NoError(t, json.Unmarshal([]byte(`"1000000000000000000000000"`), &b))
	require.Equal(t, "1000000000000000000000000", b.String())
}
