package common

import (
	"encoding/binary"
	"math/big"
)

// Uint64ToBytes converts a uint64 to a byte slice in big-endian order
func Uint64ToBytes(num uint64) []byte {
	const uint64ByteSize = 8

	bytes := make([]byte, uint64ByteSize)
	binary.BigEndian.PutUint64(bytes, num)

	return bytes
}

// BytesToUint64 converts a byte slice to a uint64
func BytesToUint64(bytes []byte) uint64 {
	return binary.BigEndian.Uint64(bytes)
}

// BigIntToBytes32 left-pads the absolute value of num to a 32 byte slice
func BigIntToBytes32(num *big.Int) []byte {
	const wordSize = 32

	bytes := make([]byte, wordSize)
	if num == nil {
		return bytes
	}
	num.FillBytes(bytes)

	return bytes
}
