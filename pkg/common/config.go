package common

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

//go:embed config.default.yaml
var defaultConfig []byte

const (
	configPathEnv = "CONFIG_PATH"
	configJSONEnv = "CONFIG_JSON"
	dropInDir     = "/etc/dockerfs.d"
)

// ConfigManager loads layered configuration into a Koanf instance and
// decodes it into T. Later layers override earlier ones:
//
//  1. embedded config.default.yaml
//  2. drop-in files under /etc/dockerfs.d/, sorted by name
//  3. the explicit path (flag) or CONFIG_PATH
//  4. CONFIG_JSON
type ConfigManager[T any] struct {
	kf       *koanf.Koanf
	tag      string
	validate *validator.Validate
}

type ConfigOptions struct {
	// Path is an explicit configuration file. It takes precedence over
	// CONFIG_PATH.
	Path string

	// DropInDir overrides the drop-in directory. Tests point this at a
	// temporary directory.
	DropInDir string
}

func NewConfigManager[T any](opts ConfigOptions) (*ConfigManager[T], error) {
	cm := &ConfigManager[T]{
		kf:       koanf.New("."),
		tag:      "key",
		validate: validator.New(),
	}

	err := cm.LoadConfig(YAMLConfigFormat, rawbytes.Provider(defaultConfig))
	if err != nil {
		return nil, err
	}

	dir := opts.DropInDir
	if dir == "" {
		dir = dropInDir
	}
	var dropIns []string
	for ext := range parserMap {
		if matches, err := filepath.Glob(filepath.Join(dir, "*"+string(ext))); err == nil {
			dropIns = append(dropIns, matches...)
		}
	}
	sort.Strings(dropIns)
	for _, path := range dropIns {
		if err := cm.LoadConfig(ConfigFormat(filepath.Ext(path)), file.Provider(path)); err != nil {
			log.Error().Str("path", path).Err(err).Msg("failed to load config")
		}
	}

	cp := opts.Path
	if cp == "" {
		cp = os.Getenv(configPathEnv)
	}
	if cp != "" {
		ce := filepath.Ext(cp)
		if ce == "" {
			return nil, fmt.Errorf("config path %s has no extension", cp)
		}
		if err := cm.LoadConfig(ConfigFormat(ce), file.Provider(cp)); err != nil {
			return nil, err
		}
	}

	configJson := os.Getenv(configJSONEnv)
	if configJson != "" {
		if err := cm.LoadConfig(JSONConfigFormat, rawbytes.Provider([]byte(configJson))); err != nil {
			log.Error().Err(err).Msg("failed to load config from CONFIG_JSON")
		}
	}

	if cm.kf.Bool("debugMode") {
		log.Info().Str("config", cm.Print()).Msg("debug mode enabled. current configuration")
	}

	return cm, nil
}

func (cm *ConfigManager[T]) Print() string {
	return cm.kf.Sprint()
}

// Set overrides a single key, used for command line flags.
func (cm *ConfigManager[T]) Set(key string, value interface{}) error {
	return cm.kf.Set(key, value)
}

// GetConfig decodes and validates the merged configuration.
func (cm *ConfigManager[T]) GetConfig() (T, error) {
	var c T

	err := cm.kf.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: cm.tag, FlatPaths: false})
	if err != nil {
		return c, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cm.validate.Struct(c); err != nil {
		return c, fmt.Errorf("invalid config: %w", err)
	}

	return c, nil
}

func (cm *ConfigManager[T]) LoadConfig(format ConfigFormat, provider koanf.Provider) error {
	parser, err := GetConfigParser(format)
	if err != nil {
		return err
	}

	return cm.kf.Load(provider, parser)
}

var (
	JSONConfigFormat ConfigFormat = ".json"
	YAMLConfigFormat ConfigFormat = ".yaml"
	YMLConfigFormat  ConfigFormat = ".yml"

	parserMap map[ConfigFormat]ParserFunc = map[ConfigFormat]ParserFunc{
		JSONConfigFormat: jsonParserFunc,
		YAMLConfigFormat: yamlParserFunc,
		YMLConfigFormat:  yamlParserFunc,
	}
)

type ConfigFormat string

type ParserFunc func() (koanf.Parser, error)

func GetConfigParser(format ConfigFormat) (koanf.Parser, error) {
	if parserFunc, ok := parserMap[format]; ok {
		return parserFunc()
	}
	return nil, errors.New("parser not found for format" + string(format))
}

func jsonParserFunc() (koanf.Parser, error) {
	return json.Parser(), nil
}

func yamlParserFunc() (koanf.Parser, error) {
	return yaml.Parser(), nil
}
