package escrow

import "errors"

var (
	// ErrZeroAmount is returned when the combined locked amount is zero.
	ErrZeroAmount = errors.New("combined transfer amount must be greater than zero")
	// ErrInvalidTimeLock is returned when the time lock is not in the future.
	ErrInvalidTimeLock = errors.New("time lock must be in the future")
	// ErrTransferNotFound is returned when no transfer has the given id.
	ErrTransferNotFound = errors.New("transfer not found")
	// ErrAlreadyFinalized is returned when completing or refunding a
	// transfer that already reached a terminal state.
	ErrAlreadyFinalized = errors.New("transfer already finalized")
	// ErrInvalidSecret is returned when the revealed secret does not hash to
	// the transfer's hash lock.
	ErrInvalidSecret = errors.New("secret does not match the hash lock")
	// ErrTimeLockNotExpired is returned when refunding before the time lock.
	ErrTimeLockNotExpired = errors.New("time lock has not expired yet")
)
