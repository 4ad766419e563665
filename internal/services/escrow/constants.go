package escrow

// Seed labels for ledger addressing. Stable: changing one orphans every
// record derived under it.
const (
	ConfigSeed = "config"
	BetSeed    = "bet"
)

// MaxHabitIDLen bounds the human-readable habit label on a bet.
const MaxHabitIDLen = 64

// BetIDHexLen is the expected length of a hex-encoded 32-byte bet id.
const BetIDHexLen = 64

// Default paging bounds for bet listings.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)
