package entity

import (
	"database/sql/driver"
	"fmt"
	"math/big"
)

// BigInt stores an arbitrary-precision token amount as a decimal string
// column. Ledger amounts use 24 decimal places, so they do not fit into
// uint64.
type BigInt struct {
	big.Int
}

func NewBigInt(i int64) BigInt {
	var b BigInt
	b.SetInt64(i)
	return b
}

func NewBigFromInt(i *big.Int) BigInt {
	var b BigInt
	if i != nil {
		b.Set(i)
	}
	return b
}

// ParseBigInt parses a non-negative base-10 amount.
func ParseBigInt(s string) (BigInt, error) {
	var b BigInt
	if _, ok := b.SetString(s, 10); !ok {
		return BigInt{}, fmt.Errorf("invalid amount %q", s)
	}

	if b.Sign() < 0 {
		return BigInt{}, fmt.Errorf("negative amount %q", s)
	}

	return b, nil
}

func (b *BigInt) Scan(value any) error {
	switch t := value.(type) {
	case string:
		if _, ok := b.SetString(t, 10); !ok {
			return fmt.Errorf("cannot scan %q into BigInt", t)
		}
	case []byte:
		if _, ok := b.SetString(string(t), 10); !ok {
			return fmt.Errorf("cannot scan %q into BigInt", t)
		}
	case int64:
		b.SetInt64(t)
	case nil:
		b.SetInt64(0)
	default:
		return fmt.Errorf("cannot scan invalid data type %T", value)
	}

	return nil
}

func (b BigInt) Value() (driver.Value, error) {
	return b.String(), nil
}

func (b BigInt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("cannot unmarshal %q into BigInt", s)
	}

	return nil
}
