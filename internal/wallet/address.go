// Package wallet provides Solana address validation and rendering helpers.
package wallet

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Validate checks that addr is a well-formed base58 32-byte public key.
func Validate(addr string) error {
	if addr == "" {
		return fmt.Errorf("empty address")
	}
	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("decode address: %w", err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("address must decode to 32 bytes, got %d", len(decoded))
	}
	return nil
}

// IsOnCurve reports whether the address is a valid ed25519 point.
// Wallet keypairs are on-curve; program derived addresses are not.
func IsOnCurve(addr string) bool {
	decoded, err := base58.Decode(addr)
	if err != nil || len(decoded) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}

// Short renders an address as "abcd…wxyz" for display.
func Short(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:4] + "…" + addr[len(addr)-4:]
}

// PayURL builds a Solana Pay transfer URL for the recipient.
func PayURL(recipient string, amount float64) string {
	if amount > 0 {
		return fmt.Sprintf("solana:%s?amount=%g", recipient, amount)
	}
	return "solana:" + recipient
}
