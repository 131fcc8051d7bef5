package config

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/valyala/fasttemplate"
	"github.com/zabit11/movement/log"
)

const (
	startTag = "{{"
	endTag   = "}}"
)

var (
	ErrCycleVars                 = fmt.Errorf("cycle vars")
	ErrMissingVars               = fmt.Errorf("missing vars")
	ErrUnsupportedConfigFileType = fmt.Errorf("unsupported config file type")

	// bare vars (A = {{B}}) are not valid TOML, they get quoted and marked
	// before parsing and unmarked once their value is known
	bareVarRe   = regexp.MustCompile(`=\s*\{\{([^}:]+)\}\}`)
	quotedVarRe = regexp.MustCompile(`=\s*"\{\{([^}:]+):raw\}\}"`)
	rawMarkRe   = regexp.MustCompile(`\{\{([^}:]+):raw\}\}`)
)

type FileData struct {
	Name    string
	Content string
}

type ConfigRender struct {
	// 0: default, 1: specific
	FilesData []FileData
	// Function to resolve environment variables, typically os.LookupEnv
	LookupEnvFunc     func(key string) (string, bool)
	EnvironmentPrefix string
}

func NewConfigRender(filesData []FileData, environmentPrefix string) *ConfigRender {
	return &ConfigRender{
		FilesData:         filesData,
		LookupEnvFunc:     os.LookupEnv,
		EnvironmentPrefix: environmentPrefix,
	}
}

// Render merges all files and resolves the variables inside, later files
// override earlier ones.
func (c *ConfigRender) Render() (string, error) {
	mergedData, err := c.Merge()
	if err != nil {
		return "", fmt.Errorf("fail to merge files. Err: %w", err)
	}
	return c.ResolveVars(mergedData)
}

func (c *ConfigRender) Merge() (string, error) {
	k := koanf.New(".")
	for _, data := range c.FilesData {
		dataToml := quoteBareVars(data.Content)
		err := k.Load(rawbytes.Provider([]byte(dataToml)), toml.Parser())
		if err != nil {
			log.Errorf("error loading file %s. Err: %v. FileData: %v", data.Name, err, dataToml)
			return "", fmt.Errorf("fail to load converted template %s to toml. Err: %w", data.Name, err)
		}
	}
	marshaled, err := k.Marshal(toml.Parser())
	if err != nil {
		return "", fmt.Errorf("fail to marshal to toml. Err: %w", err)
	}
	return unquoteBareVars(string(marshaled)), nil
}

// ResolveVars substitutes every {{var}} with an environment variable, if one
// is exported, or with the value the merged config gives to that key. Each
// pass must resolve at least one var, a pass that resolves nothing means the
// remaining vars are either undefined or form a cycle (A={{B}}, B={{A}}).
func (c *ConfigRender) ResolveVars(fullConfigData string) (string, error) {
	data := fullConfigData
	pending := c.vars(data)
	for len(pending) > 0 {
		resolved, err := c.resolvePass(data)
		if err != nil {
			return "", err
		}
		left := c.vars(resolved)
		if len(left) == len(pending) {
			undefined, err := c.undefinedVars(resolved)
			if err != nil {
				return "", err
			}
			if len(undefined) > 0 {
				return resolved, fmt.Errorf("missing vars: %v. Err: %w", undefined, ErrMissingVars)
			}
			return resolved, fmt.Errorf("not resolved cycle vars: %v. Err: %w", left, ErrCycleVars)
		}
		data = resolved
		pending = left
	}
	return data, nil
}

// resolvePass runs one substitution round over the config. Vars whose value
// is itself unresolved keep their template form for the next round.
func (c *ConfigRender) resolvePass(data string) (string, error) {
	tpl, values, err := c.parseTemplate(data)
	if err != nil {
		return "", err
	}
	out := tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if v, ok := c.findTagInEnvironment(tag); ok {
			return w.Write([]byte(v))
		}
		if v, ok := values[tag]; ok {
			return w.Write([]byte(fmt.Sprintf("%v", v)))
		}
		return w.Write([]byte(startTag + tag + endTag))
	})
	return stripRawMarks(out), nil
}

// parseTemplate reads data both as a fasttemplate and as TOML, the TOML view
// provides the values the tags resolve to.
func (c *ConfigRender) parseTemplate(data string) (*fasttemplate.Template, map[string]interface{}, error) {
	tpl, err := fasttemplate.NewTemplate(data, startTag, endTag)
	if err != nil {
		return nil, nil, fmt.Errorf("fail to load template. Err: %w", err)
	}
	k := koanf.New(".")
	err = k.Load(rawbytes.Provider([]byte(quoteBareVars(data))), toml.Parser())
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing template data. Content: %s. Err: %w", data, err)
	}
	return tpl, k.All(), nil
}

func (c *ConfigRender) vars(data string) []string {
	tpl, err := fasttemplate.NewTemplate(data, startTag, endTag)
	if err != nil {
		return []string{}
	}
	var found []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if !contains(found, tag) {
			found = append(found, tag)
		}
		return w.Write([]byte(""))
	})
	return found
}

// undefinedVars returns the vars that neither the environment nor the config
// itself define. Those can never be resolved, unlike cycle vars.
func (c *ConfigRender) undefinedVars(data string) ([]string, error) {
	tpl, values, err := c.parseTemplate(data)
	if err != nil {
		return nil, err
	}
	var undefined []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if _, ok := c.findTagInEnvironment(tag); ok {
			return w.Write([]byte(""))
		}
		if _, ok := values[tag]; !ok && !contains(undefined, tag) {
			undefined = append(undefined, tag)
		}
		return w.Write([]byte(""))
	})
	return undefined, nil
}

func (c *ConfigRender) findTagInEnvironment(tag string) (string, bool) {
	envTag := c.EnvironmentPrefix + "_" + strings.ReplaceAll(tag, ".", "_")
	return c.LookupEnvFunc(envTag)
}

func quoteBareVars(data string) string {
	return bareVarRe.ReplaceAllString(data, `= "{{${1}:raw}}"`)
}

func unquoteBareVars(data string) string {
	return quotedVarRe.ReplaceAllString(data, `= {{${1}}}`)
}

func stripRawMarks(data string) string {
	return rawMarkRe.ReplaceAllString(data, `{{${1}}}`)
}

func contains(vars []string, search string) bool {
	for _, v := range vars {
		if v == search {
			return true
		}
	}
	return false
}

func readFileToString(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func convertFileToToml(fileData string, fileType string) (string, error) {
	switch strings.ToLower(fileType) {
	case "json":
		k := koanf.New(".")
		err := k.Load(rawbytes.Provider([]byte(fileData)), json.Parser())
		if err != nil {
			return fileData, fmt.Errorf("error loading json file. Err: %w", err)
		}
		tomlData, err := toml.Parser().Marshal(k.Raw())
		if err != nil {
			return fileData, fmt.Errorf("error converting json to toml. Err: %w", err)
		}
		return string(tomlData), nil
	case "yml", "yaml", "ini":
		return fileData, fmt.Errorf("cant convert from %s to TOML. Err: %w", fileType, ErrUnsupportedConfigFileType)
	default:
		log.Warnf("filetype %s unknown, assuming is a TOML file", fileType)
		return fileData, nil
	}
}
