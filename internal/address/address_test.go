package address

import (
	"bytes"
	"errors"
	"testing"
)

func TestDerive_Deterministic(t *testing.T) {
	d := Deriver{Namespace: FromBytes([]byte("program"))}
	owner := FromBytes([]byte("owner"))
	a := d.Pool(owner)
	b := d.Pool(owner)
	if a != b {
		t.Fatalf("pool address not deterministic: %s != %s", a, b)
	}
	if a.IsZero() {
		t.Fatalf("derived zero address")
	}
}

func TestDerive_KindsAndNamespacesSeparate(t *testing.T) {
	d := Deriver{Namespace: FromBytes([]byte("program"))}
	owner := FromBytes([]byte("owner"))
	if d.Pool(owner) == d.PoolAuthority(owner) {
		t.Fatalf("pool and authority derivations collided")
	}
	other := Deriver{Namespace: FromBytes([]byte("other-program"))}
	if d.Pool(owner) == other.Pool(owner) {
		t.Fatalf("namespaces collided")
	}
}

func TestDerive_LengthPrefixed(t *testing.T) {
	d := Deriver{}
	a, err := d.Derive(KindListing, []byte("ab"), []byte("c"))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	b, err := d.Derive(KindListing, []byte("a"), []byte("bc"))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if a == b {
		t.Fatalf("seed boundaries ignored")
	}
}

func TestDerive_SeedLimits(t *testing.T) {
	d := Deriver{}
	if _, err := d.Derive(KindPool, bytes.Repeat([]byte{1}, MaxSeedLen+1)); !errors.Is(err, ErrSeedTooLong) {
		t.Fatalf("err=%v want ErrSeedTooLong", err)
	}
	seeds := make([][]byte, MaxSeeds+1)
	if _, err := d.Derive(KindPool, seeds...); !errors.Is(err, ErrTooManySeeds) {
		t.Fatalf("err=%v want ErrTooManySeeds", err)
	}
	if _, err := d.Derive(KindPool, bytes.Repeat([]byte{1}, MaxSeedLen)); err != nil {
		t.Fatalf("32-byte seed rejected: %v", err)
	}
}

func TestListingNonceChangesAddress(t *testing.T) {
	d := Deriver{}
	seller := FromBytes([]byte("seller"))
	mint := FromBytes([]byte("mint"))
	if d.Listing(seller, mint, 0) == d.Listing(seller, mint, 1) {
		t.Fatalf("listing nonce ignored")
	}
}

func TestParseRoundTrip(t *testing.T) {
	a := FromBytes([]byte("x"))
	got, err := Parse(a.String())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if got != a {
		t.Fatalf("got=%s want=%s", got, a)
	}
	if _, err := Parse("3mJr7AoUXx2Wqd"); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("err=%v want ErrInvalidLength", err)
	}
	if _, err := Parse("0OIl"); err == nil {
		t.Fatalf("expected base58 error")
	}
}

func TestScanValue(t *testing.T) {
	a := FromBytes([]byte("row"))
	v, err := a.Value()
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	var b Address
	if err := b.Scan(v); err != nil {
		t.Fatalf("scan err=%v", err)
	}
	if a != b {
		t.Fatalf("scan=%s want=%s", b, a)
	}
}
