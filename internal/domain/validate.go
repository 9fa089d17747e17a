package domain

import "github.com/mr-tron/base58"

// ValidMint reports whether s looks like a Solana mint address: base-58
// encoded, 32-44 characters. It does not guarantee the mint exists on chain.
func ValidMint(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	_, err := base58.Decode(s)
	return err == nil
}

// String returns the string representation of Mode.
func (m Mode) String() string {
	return string(m)
}

// IsValid reports whether m is a recognized enrichment mode.
func (m Mode) IsValid() bool {
	return m == ModeFast || m == ModeFull
}
