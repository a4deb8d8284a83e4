package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix 环境变量前缀。层级用双下划线分隔：DBBRIDGE_CONNECTIONS__MAIN__DSN -> connections.main.dsn
const EnvPrefix = "DBBRIDGE_"

// flagKeys 命令行参数到配置键的映射，未列出的参数不参与配置
var flagKeys = map[string]string{
	"conn":      "default",
	"log-level": "log.level",
	"output":    "output",
	"engine":    "connections." + AdHocConnection + ".engine",
	"dsn":       "connections." + AdHocConnection + ".dsn",
	"driver":    "connections." + AdHocConnection + ".driver",
}

// FindConfigFile 显式路径优先，其次当前目录下的 dbbridge.yaml / dbbridge.yml
func FindConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"dbbridge.yaml", "dbbridge.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load 依次加载默认值、配置文件、环境变量、显式设置的命令行参数，后者覆盖前者
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"log.level":  DefaultLogLevel,
		"log.format": DefaultLogFormat,
		"output":     DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := FindConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
		// 只给了 --engine/--dsn 时使用临时连接
		adHoc := flags.Changed("engine") || flags.Changed("dsn")
		if adHoc && !flags.Changed("conn") {
			if err := k.Set("default", AdHocConnection); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}
