// Package ledger derives deterministic storage addresses for escrow
// records. Addresses are computed from stable identifying fields, so any
// caller can recompute them independently and the engine can re-verify
// them on every access. Escrow and account identities live in separate
// hash namespaces: no key pair exists for an escrow address, custody is
// enforced purely by the service layer.
package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
)

const (
	escrowNamespace  = "habitstake/escrow/v1"
	accountNamespace = "habitstake/account/v1"

	// CanonicalBump is the derivation parameter stored alongside every
	// escrow record. It is folded into the hash and kept as an audit
	// proof that the record occupies its canonical address.
	CanonicalBump uint8 = 0xff
)

// AddressLen is the raw address size in bytes.
const AddressLen = 32

// Address is a 32-byte storage location, hex-encoded at rest and on the wire.
type Address [AddressLen]byte

var ErrInvalidAddress = errors.New("ledger: invalid address encoding")

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

func (a Address) Bytes() []byte {
	b := make([]byte, AddressLen)
	copy(b, a[:])
	return b
}

// ParseAddress decodes a hex-encoded address.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != AddressLen {
		return a, ErrInvalidAddress
	}
	copy(a[:], raw)
	return a, nil
}

// Derive computes the canonical escrow address for the given seeds and
// returns it together with the bump proof.
func Derive(seeds ...[]byte) (Address, uint8) {
	return DeriveWithBump(CanonicalBump, seeds...), CanonicalBump
}

// DeriveWithBump computes the escrow address for the given seeds under a
// specific bump. Seeds are length-prefixed, so no two distinct seed lists
// can collapse into the same digest input.
func DeriveWithBump(bump uint8, seeds ...[]byte) Address {
	return hash(escrowNamespace, bump, seeds)
}

// Verify recomputes the address from the stored bump and seeds and checks
// that the record really occupies its canonical location.
func Verify(addr Address, bump uint8, seeds ...[]byte) bool {
	return DeriveWithBump(bump, seeds...) == addr
}

// DeriveAccount computes an identity address in the account namespace.
// Account and escrow namespaces never overlap, which is what makes escrow
// records program-owned: there is no identity an escrow address could
// belong to.
func DeriveAccount(seeds ...[]byte) Address {
	return hash(accountNamespace, 0, seeds)
}

// UserSeed builds the account seed material for a registered user.
func UserSeed(userID uint) [][]byte {
	id := make([]byte, 8)
	binary.BigEndian.PutUint64(id, uint64(userID))
	return [][]byte{[]byte("user"), id}
}

// TreasurySeed builds the account seed material for the treasury.
func TreasurySeed() [][]byte {
	return [][]byte{[]byte("treasury")}
}

func hash(namespace string, bump uint8, seeds [][]byte) Address {
	h := sha256.New()
	h.Write([]byte(namespace))
	for _, seed := range seeds {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(seed)))
		h.Write(n[:])
		h.Write(seed)
	}
	h.Write([]byte{bump})

	var a Address
	copy(a[:], h.Sum(nil))
	return a
}
