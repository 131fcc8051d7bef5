package db

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	sqlite "github.com/mattn/go-sqlite3"
	"github.com/russross/meddler"
)

// init registers tags to be used to read/write from SQL DBs using meddler
func init() {
	meddler.Default = meddler.SQLite
	meddler.Register("bigint", BigIntMeddler{})
	meddler.Register("hash", HashMeddler{})
	meddler.Register("address", AddressMeddler{})
}

func SQLiteErr(err error) (*sqlite.Error, bool) {
	sqliteErr := &sqlite.Error{}
	if ok := errors.As(err, sqliteErr); ok {
		return sqliteErr, true
	}
	if driverErr, ok := meddler.DriverErr(err); ok {
		return sqliteErr, errors.As(driverErr, sqliteErr)
	}
	return sqliteErr, false
}

// IsUniqueConstraintViolation reports whether err comes from inserting a
// duplicate on a unique or primary key column.
func IsUniqueConstraintViolation(err error) bool {
	sqliteErr, ok := SQLiteErr(err)
	return ok && sqliteErr.ExtendedCode == UniqueConstrain
}

// SlicePtrsToSlice converts any []*Foo to []Foo
func SlicePtrsToSlice(slice interface{}) interface{} {
	v := reflect.ValueOf(slice)
	vLen := v.Len()
	typ := v.Type().Elem().Elem()
	res := reflect.MakeSlice(reflect.SliceOf(typ), vLen, vLen)
	for i := 0; i < vLen; i++ {
		res.Index(i).Set(v.Index(i).Elem())
	}
	return res.Interface()
}

// BigIntMeddler encodes or decodes the field value to or from string.
// Amounts are stored as base 10 strings to keep full 256 bit precision.
type BigIntMeddler struct{}

// PreRead is called before a Scan operation for fields that have the BigIntMeddler
func (b BigIntMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	// give a pointer to a byte buffer to grab the raw data
	return new(string), nil
}

// PostRead is called after a Scan operation for fields that have the BigIntMeddler
func (b BigIntMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	ptr, ok := scanTarget.(*string)
	if !ok {
		return errors.New("scanTarget is not *string")
	}
	if ptr == nil {
		return fmt.Errorf("BigIntMeddler.PostRead: nil pointer")
	}
	field, ok := fieldPtr.(**big.Int)
	if !ok {
		return errors.New("fieldPtr is not *big.Int")
	}
	decimal := 10
	*field, ok = new(big.Int).SetString(*ptr, decimal)
	if !ok {
		return fmt.Errorf("big.Int.SetString failed on \"%v\"", *ptr)
	}
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the BigIntMeddler
func (b BigIntMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	field, ok := fieldPtr.(*big.Int)
	if !ok {
		return nil, errors.New("fieldPtr is not *big.Int")
	}

	return field.String(), nil
}

// HashMeddler encodes or decodes the field value to or from string
type HashMeddler struct{}

// PreRead is called before a Scan operation for fields that have the HashMeddler
func (b HashMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	// give a pointer to a byte buffer to grab the raw data
	return new(string), nil
}

// PostRead is called after a Scan operation for fields that have the HashMeddler
func (b HashMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	rawHashPtr, ok := scanTarget.(*string)
	if !ok {
		return errors.New("scanTarget is not *string")
	}
	switch field := fieldPtr.(type) {
	case *common.Hash:
		*field = common.HexToHash(*rawHashPtr)
		return nil
	case **common.Hash:
		if *rawHashPtr == "" {
			return nil
		}
		hash := common.HexToHash(*rawHashPtr)
		*field = &hash
		return nil
	default:
		return errors.New("fieldPtr is not *common.Hash or **common.Hash")
	}
}

// PreWrite is called before an Insert or Update operation for fields that have the HashMeddler
func (b HashMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	switch field := fieldPtr.(type) {
	case common.Hash:
		return field.Hex(), nil
	case *common.Hash:
		if field == nil {
			return "", nil
		}
		return field.Hex(), nil
	default:
		return nil, errors.New("fieldPtr is not common.Hash or *common.Hash")
	}
}

// AddressMeddler encodes or decodes the field value to or from string
type AddressMeddler struct{}

// PreRead is called before a Scan operation for fields that have the AddressMeddler
func (b AddressMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	// give a pointer to a byte buffer to grab the raw data
	return new(string), nil
}

// PostRead is called after a Scan operation for fields that have the AddressMeddler
func (b AddressMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	ptr, ok := scanTarget.(*string)
	if !ok {
		return errors.New("scanTarget is not *string")
	}
	if ptr == nil {
		return errors.New("AddressMeddler.PostRead: nil pointer")
	}
	field, ok := fieldPtr.(*common.Address)
	if !ok {
		return errors.New("fieldPtr is not common.Address")
	}
	*field = common.HexToAddress(*ptr)
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the AddressMeddler
func (b AddressMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	field, ok := fieldPtr.(common.Address)
	if !ok {
		return nil, errors.New("fieldPtr is not common.Address")
	}

	return field.Hex(), nil
}
