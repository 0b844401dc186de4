package runtime

import (
	"crypto/sha256"

	"filippo.io/edwards25519"

	"github.com/fgrust/reward-pool/pkg/types"
)

// PDA constants
const (
	// MaxSeeds is the maximum number of seeds for PDA derivation
	MaxSeeds = 16
	// MaxSeedLen is the maximum length of a single seed
	MaxSeedLen = 32
	// PDAMarker is the string appended during PDA derivation
	PDAMarker = "ProgramDerivedAddress"
)

// CreateProgramAddress derives a program address from seeds and a program ID.
//
// Formula: SHA256(seeds... || program_id || "ProgramDerivedAddress")
//
// The result must not be a valid ed25519 curve point, which guarantees no
// private key exists for it: only program logic can present it as a signer.
// Returns false if the seeds are invalid or the derived hash lands on the
// curve (the caller then retries with a different bump seed).
func CreateProgramAddress(seeds [][]byte, programID types.Pubkey) (types.Pubkey, bool) {
	if len(seeds) > MaxSeeds {
		return types.ZeroPubkey, false
	}

	hasher := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return types.ZeroPubkey, false
		}
		hasher.Write(seed)
	}
	hasher.Write(programID[:])
	hasher.Write([]byte(PDAMarker))

	hash := hasher.Sum(nil)
	if isOnCurve(hash) {
		return types.ZeroPubkey, false
	}

	var pda types.Pubkey
	copy(pda[:], hash)
	return pda, true
}

// FindProgramAddress finds a valid program address by trying bump seeds
// from 255 down to 0. Returns the address, the bump, and whether one was
// found.
func FindProgramAddress(seeds [][]byte, programID types.Pubkey) (types.Pubkey, uint8, bool) {
	seedsWithBump := make([][]byte, len(seeds)+1)
	copy(seedsWithBump, seeds)
	bumpSeed := []byte{0}
	seedsWithBump[len(seeds)] = bumpSeed

	for bump := 255; bump >= 0; bump-- {
		bumpSeed[0] = uint8(bump)
		pda, valid := CreateProgramAddress(seedsWithBump, programID)
		if valid {
			return pda, uint8(bump), true
		}
	}

	return types.ZeroPubkey, 0, false
}

// isOnCurve reports whether a 32-byte value decompresses to a valid
// ed25519 curve point.
func isOnCurve(data []byte) bool {
	if len(data) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(data)
	return err == nil
}
