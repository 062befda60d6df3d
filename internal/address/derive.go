package address

import (
	"crypto/sha256"
	"encoding/binary"
	"io"
)

// Kind separates derivation domains so equal seeds never collide across entity types.
type Kind string

const (
	KindPool         Kind = "pool"
	KindStrategy     Kind = "strategy"
	KindUserDeposit  Kind = "user_deposit"
	KindListing      Kind = "listing"
	KindEscrow       Kind = "escrow"
	KindAuthority    Kind = "authority"
	KindReserve      Kind = "reserve"
	KindYieldMint    Kind = "yt_mint"
	KindTokenAccount Kind = "token_account"
	KindAssetMint    Kind = "asset_mint"
)

// Deriver computes addresses under a fixed namespace (the deployment's program identity).
type Deriver struct {
	Namespace Address
}

// Derive is pure: the same namespace, kind and seeds always give the same address.
func (d Deriver) Derive(kind Kind, seeds ...[]byte) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Zero, ErrTooManySeeds
	}
	h := sha256.New()
	h.Write(d.Namespace[:])
	writeChunk(h, []byte(kind))
	for _, s := range seeds {
		if len(s) > MaxSeedLen {
			return Zero, ErrSeedTooLong
		}
		writeChunk(h, s)
	}
	var out Address
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Length prefixes keep ("ab","c") and ("a","bc") apart.
func writeChunk(w io.Writer, b []byte) {
	var n [2]byte
	binary.LittleEndian.PutUint16(n[:], uint16(len(b)))
	_, _ = w.Write(n[:])
	_, _ = w.Write(b)
}

func U64Seed(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

func StringSeed(s string) []byte { return []byte(s) }

// The helpers below only fail on seed limits, which their fixed-size inputs never hit.

func (d Deriver) Pool(owner Address) Address {
	return d.must(KindPool, owner[:])
}

func (d Deriver) PoolAuthority(pool Address) Address {
	return d.must(KindAuthority, pool[:])
}

func (d Deriver) RewardReserveAuthority(pool Address) Address {
	return d.must(KindReserve, pool[:])
}

func (d Deriver) Strategy(asset, owner Address, sequence uint64) Address {
	return d.must(KindStrategy, asset[:], owner[:], U64Seed(sequence))
}

func (d Deriver) UserDeposit(user, pool, strategy Address) Address {
	return d.must(KindUserDeposit, user[:], pool[:], strategy[:])
}

func (d Deriver) YieldMint(pool, strategy Address) Address {
	return d.must(KindYieldMint, pool[:], strategy[:])
}

func (d Deriver) Listing(seller, ytMint Address, nonce uint64) Address {
	return d.must(KindListing, seller[:], ytMint[:], U64Seed(nonce))
}

func (d Deriver) EscrowAuthority(seller, listing Address) Address {
	return d.must(KindEscrow, seller[:], listing[:])
}

func (d Deriver) TokenAccount(owner, mint Address) Address {
	return d.must(KindTokenAccount, owner[:], mint[:])
}

func (d Deriver) AssetMint(symbol string) (Address, error) {
	return d.Derive(KindAssetMint, StringSeed(symbol))
}

func (d Deriver) must(kind Kind, seeds ...[]byte) Address {
	a, err := d.Derive(kind, seeds...)
	if err != nil {
		panic(err)
	}
	return a
}
