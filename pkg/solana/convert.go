package solana

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LamportsPerSol is the number of base units in one SOL
const LamportsPerSol = 1_000_000_000

// LamportsToSol converts base units to whole SOL. The divide direction is
// exact: every lamport amount has a finite 9-decimal SOL representation.
func LamportsToSol(lamports uint64) float64 {
	return decimal.NewFromUint64(lamports).Shift(-9).InexactFloat64()
}

// LamportsStringToSol converts a string-encoded base unit amount, as returned
// by the Bags API, to whole SOL.
func LamportsStringToSol(amount string) (float64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid lamport amount %q: %w", amount, err)
	}
	return d.Shift(-9).InexactFloat64(), nil
}

// SolToLamports converts whole SOL to base units, truncating anything below
// one lamport.
func SolToLamports(sol float64) uint64 {
	d := decimal.NewFromFloat(sol).Shift(9).Floor()
	if d.IsNegative() {
		return 0
	}
	return uint64(d.IntPart())
}
