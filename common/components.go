package common

const (
	// RPC name to identify the rpc component
	RPC = "rpc"
	// REFUND_SPONSOR name to identify the refund sponsor component
	REFUND_SPONSOR = "refund-sponsor" //nolint:stylecheck
)
