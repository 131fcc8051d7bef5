package escrow

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/zabit11/movement/fungible"
)

type Config struct {
	// DBPath path of the DB
	DBPath string `mapstructure:"DBPath"`
	// VaultAddress is the local account that custodies all escrowed value
	VaultAddress common.Address `mapstructure:"VaultAddress"`
	// GenesisNative funds native accounts the first time the node starts
	GenesisNative []fungible.Allocation `mapstructure:"GenesisNative"`
	// GenesisWrapped funds wrapped accounts the first time the node starts
	GenesisWrapped []fungible.Allocation `mapstructure:"GenesisWrapped"`
}
