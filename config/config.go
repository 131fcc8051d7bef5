package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
	"github.com/zabit11/movement/common"
	"github.com/zabit11/movement/escrow"
	"github.com/zabit11/movement/log"
	"github.com/zabit11/movement/refundsponsor"
)

const (
	// FlagCfg is the flag for cfg.
	FlagCfg = "cfg"
	// FlagComponents is the flag for components.
	FlagComponents = "components"
	// FlagSaveConfigPath is the flag to save the final configuration file
	FlagSaveConfigPath = "save-config-path"

	EnvVarPrefix       = "MOVEMENT"
	ConfigType         = "toml"
	SaveConfigFileName = "movement_config.toml"

	DefaultCreationFilePermissions = os.FileMode(0600)
)

/*
Config represents the configuration of the entire movement node
The file is [TOML format]

[TOML format]: https://en.wikipedia.org/wiki/TOML
*/
type Config struct {
	// Configure Log level for all the services, allow also to store the logs in a file
	Log log.Config
	// Configuration of the transfer escrow and the asset ledgers behind it
	Escrow escrow.Config
	// RPC is the config for the RPC server
	RPC jRPC.Config
	// RefundSponsor is the config for the expired transfer refunder
	RefundSponsor refundsponsor.Config
	// Common Config that affects all the services
	Common common.Config
}

// Load loads the configuration
func Load(ctx *cli.Context) (*Config, error) {
	configFilePath := ctx.StringSlice(FlagCfg)
	filesData, err := readFiles(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading files: Err: %w", err)
	}
	saveConfigPath := ctx.String(FlagSaveConfigPath)
	return LoadFile(filesData, saveConfigPath)
}

func readFiles(files []string) ([]FileData, error) {
	result := make([]FileData, 0)
	for _, file := range files {
		fileContent, err := readFileToString(file)
		if err != nil {
			return nil, fmt.Errorf("error reading file content: %s. Err: %w", file, err)
		}
		fileExtension := getFileExtension(file)
		if fileExtension != ConfigType {
			fileContent, err = convertFileToToml(fileContent, fileExtension)
			if err != nil {
				return nil, fmt.Errorf("error converting file: %s from %s to TOML. Err: %w", file, fileExtension, err)
			}
		}
		result = append(result, FileData{Name: file, Content: fileContent})
	}
	return result, nil
}

func getFileExtension(fileName string) string {
	return fileName[strings.LastIndex(fileName, ".")+1:]
}

// LoadFileFromString loads the configuration from an already rendered string
func LoadFileFromString(configFileData string, configType string) (*Config, error) {
	cfg := &Config{}
	err := loadString(cfg, configFileData, configType, true, EnvVarPrefix)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func SaveConfigToString(cfg Config) (string, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LoadFile merges the default configuration with the given files, resolves
// the vars and decodes the result
func LoadFile(files []FileData, saveConfigPath string) (*Config, error) {
	fileData := make([]FileData, 0)
	fileData = append(fileData, FileData{Name: "default_vars", Content: DefaultVars})
	fileData = append(fileData, FileData{Name: "default_values", Content: DefaultValues})
	fileData = append(fileData, files...)

	merger := NewConfigRender(fileData, EnvVarPrefix)

	renderedCfg, err := merger.Render()
	if err != nil {
		return nil, err
	}
	if saveConfigPath != "" {
		fullPath := saveConfigPath + "/" + SaveConfigFileName
		err = os.WriteFile(fullPath, []byte(renderedCfg), DefaultCreationFilePermissions)
		if err != nil {
			err = fmt.Errorf("error writing config file: %s. Err: %w", fullPath, err)
			log.Error(err)
			return nil, err
		}
	}
	cfg, err := LoadFileFromString(renderedCfg, ConfigType)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadString(cfg *Config, configData string, configType string, allowEnvVars bool, envPrefix string) error {
	viper.SetConfigType(configType)
	if allowEnvVars {
		replacer := strings.NewReplacer(".", "_")
		viper.SetEnvKeyReplacer(replacer)
		viper.SetEnvPrefix(envPrefix)
		viper.AutomaticEnv()
	}
	err := viper.ReadConfig(bytes.NewBuffer([]byte(configData)))
	if err != nil {
		return err
	}
	decodeHooks := []viper.DecoderConfigOption{
		// this allows arrays to be decoded from env var separated by ",", example: MY_VAR="value1,value2,value3"
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(), mapstructure.StringToSliceHookFunc(","))),
	}

	return viper.Unmarshal(&cfg, decodeHooks...)
}
