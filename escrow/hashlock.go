package escrow

import (
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// HashSecret computes the commitment a secret has to satisfy to release a
// transfer. Counterparties derive the hash lock the same way.
func HashSecret(secret common.Hash) common.Hash {
	var hash common.Hash
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(secret[:])
	copy(hash[:], hasher.Sum(nil))

	return hash
}
