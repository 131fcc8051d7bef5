package escrow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iden3/go-iden3-crypto/keccak256"
	dbCommon "github.com/zabit11/movement/common"
	"github.com/zabit11/movement/db"
)

// deriveTransferID binds the id to the transfer parameters and a vault-wide
// nonce, so two transfers never collide even with identical parameters.
func deriveTransferID(
	originator common.Address,
	recipient common.Hash,
	hashLock common.Hash,
	amount *big.Int,
	nonce uint64,
) common.Hash {
	return common.BytesToHash(keccak256.Hash(
		originator.Bytes(),
		recipient.Bytes(),
		hashLock.Bytes(),
		dbCommon.BigIntToBytes32(amount),
		dbCommon.Uint64ToBytes(nonce),
	))
}

// nextNonce returns the current id nonce and advances it. The read and the
// increment ride the caller's transaction, so a rolled back initiation does
// not burn a nonce.
func nextNonce(tx db.Querier) (uint64, error) {
	var nonce uint64
	if err := tx.QueryRow(`
		SELECT nonce FROM id_nonce WHERE k = 0;
	`).Scan(&nonce); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`
		UPDATE id_nonce SET nonce = nonce + 1 WHERE k = 0;
	`); err != nil {
		return 0, err
	}

	return nonce, nil
}
