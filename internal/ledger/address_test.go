package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveIsDeterministic(t *testing.T) {
	user := DeriveAccount(UserSeed(42)...)
	betID := []byte("0123456789abcdef0123456789abcdef")

	addr1, bump1 := Derive([]byte("bet"), user.Bytes(), betID)
	addr2, bump2 := Derive([]byte("bet"), user.Bytes(), betID)

	assert.Equal(t, addr1, addr2)
	assert.Equal(t, bump1, bump2)
	assert.Equal(t, CanonicalBump, bump1)
}

func TestDeriveDistinguishesSeeds(t *testing.T) {
	userA := DeriveAccount(UserSeed(1)...)
	userB := DeriveAccount(UserSeed(2)...)
	betID := []byte("0123456789abcdef0123456789abcdef")

	addrA, _ := Derive([]byte("bet"), userA.Bytes(), betID)
	addrB, _ := Derive([]byte("bet"), userB.Bytes(), betID)
	assert.NotEqual(t, addrA, addrB, "different users must get different bet addresses")

	otherID := []byte("fedcba9876543210fedcba9876543210")
	addrC, _ := Derive([]byte("bet"), userA.Bytes(), otherID)
	assert.NotEqual(t, addrA, addrC, "different bet ids must get different addresses")
}

func TestSeedBoundariesDoNotCollapse(t *testing.T) {
	// ("ab", "c") and ("a", "bc") must not hash identically.
	addr1, _ := Derive([]byte("ab"), []byte("c"))
	addr2, _ := Derive([]byte("a"), []byte("bc"))
	assert.NotEqual(t, addr1, addr2)
}

func TestVerify(t *testing.T) {
	seeds := [][]byte{[]byte("config")}
	addr, bump := Derive(seeds...)

	assert.True(t, Verify(addr, bump, seeds...))
	assert.False(t, Verify(addr, bump-1, seeds...), "wrong bump must fail verification")
	assert.False(t, Verify(addr, bump, []byte("other")), "wrong seeds must fail verification")
}

func TestAccountNamespaceIsDisjoint(t *testing.T) {
	seeds := [][]byte{[]byte("treasury")}
	escrow, _ := Derive(seeds...)
	account := DeriveAccount(seeds...)
	assert.NotEqual(t, escrow, account, "escrow and account namespaces must not overlap")
}

func TestParseAddress(t *testing.T) {
	addr := DeriveAccount(TreasurySeed()...)

	parsed, err := ParseAddress(addr.String())
	assert.NoError(t, err)
	assert.Equal(t, addr, parsed)

	_, err = ParseAddress("not-hex")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = ParseAddress("abcd")
	assert.ErrorIs(t, err, ErrInvalidAddress, "short input must be rejected")
}
