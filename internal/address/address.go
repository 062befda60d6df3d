package address

import (
	"crypto/sha256"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

const (
	Size = 32

	MaxSeedLen = 32
	MaxSeeds   = 16
)

var (
	ErrSeedTooLong   = errors.New("address: seed longer than 32 bytes")
	ErrTooManySeeds  = errors.New("address: more than 16 seeds")
	ErrInvalidLength = errors.New("address: decoded length is not 32 bytes")
)

// Address identifies an actor, account, mint or ledger entity. Its text form is base58.
type Address [Size]byte

// Zero is the "no address" value; as a deposit strategy it selects the default, yield-free position.
var Zero Address

func Parse(s string) (Address, error) {
	var a Address
	s = strings.TrimSpace(s)
	if s == "" {
		return a, fmt.Errorf("address: empty")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return a, fmt.Errorf("address: %w", err)
	}
	if len(raw) != Size {
		return a, ErrInvalidLength
	}
	copy(a[:], raw)
	return a, nil
}

func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromBytes hashes arbitrary input into an address. Used for test identities and
// for turning external account names into stable actor addresses.
func FromBytes(b []byte) Address {
	return Address(sha256.Sum256(b))
}

func (a Address) String() string { return base58.Encode(a[:]) }

func (a Address) IsZero() bool { return a == Zero }

func (a Address) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, a[:])
	return out
}

func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Address) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (Address) GormDataType() string { return "string" }

// Value stores the base58 form so rows stay readable in SQL.
func (a Address) Value() (driver.Value, error) { return a.String(), nil }

func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Zero
		return nil
	case string:
		return a.UnmarshalText([]byte(v))
	case []byte:
		return a.UnmarshalText(v)
	default:
		return fmt.Errorf("address: cannot scan %T", src)
	}
}
