package common

type Config struct {
	// NetworkID is the identifier this node reports for its local domain
	NetworkID uint32 `mapstructure:"NetworkID"`
}
