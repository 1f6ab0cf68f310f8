package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"wsproxy_go/internal/types"

	ini "gopkg.in/ini.v1"
)

// Default 返回与命令行默认值一致的配置
func Default() *types.Config {
	return &types.Config{
		CommonConf: types.CommonConf{
			BufferSize: 1024,
			Timeout:    3,
		},
		GatewayConf: types.GatewayConf{
			Addr:         "0.0.0.0",
			RealIPHeader: "X-Real-IP",
		},
		SecurityConf: types.SecurityConf{
			Stream: "bin",
		},
		LogConf: types.LogConf{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadIni 从指定的 fileName 加载配置到 cfg 中, 文件中缺失的键保留原值。
func LoadIni(cfg *types.Config, fileName string) error {
	iniFile, err := ini.Load(fileName)
	if err != nil {
		return err
	}
	if err := iniFile.MapTo(cfg); err != nil {
		return fmt.Errorf("failed to map ini file %s: %w", fileName, err)
	}
	return nil
}

// Load 按 默认值 < ini < 环境变量 < 显式命令行参数 的顺序构建最终配置
func Load(f *Flags) (*types.Config, error) {
	cfg := Default()
	if f.ConfigPath != "" {
		if err := LoadIni(cfg, f.ConfigPath); err != nil {
			return nil, err
		}
	}
	overrideFromEnv(cfg)
	f.Apply(cfg)

	cfg.RealIPHeader = strings.TrimSpace(cfg.RealIPHeader)
	if cfg.RealIPHeader == "" {
		cfg.RealIPHeader = "X-Real-IP"
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置的取值范围
func Validate(cfg *types.Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be within 1-65535", cfg.Port)
	}
	if cfg.BufferSize <= 0 {
		return fmt.Errorf("invalid buffer size %d", cfg.BufferSize)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %d", cfg.Timeout)
	}
	if cfg.AESOnly && cfg.Secret == "" {
		return errors.New("--aes-only requires --secret")
	}
	return nil
}

func overrideFromEnv(cfg *types.Config) {
	overrideFromEnvInt(&cfg.Port, "WSPROXY_PORT")
	overrideFromEnvInt(&cfg.Timeout, "WSPROXY_TIMEOUT")
	overrideFromEnvInt(&cfg.BufferSize, "WSPROXY_BUFFER")
	overrideFromEnvString(&cfg.FrKey, "WSPROXY_FRKEY")
}

func overrideFromEnvInt(target *int, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if intValue, err := strconv.Atoi(envValue); err == nil {
			*target = intValue
		}
	}
}

func overrideFromEnvString(target *string, envName string) {
	if envValue, ok := os.LookupEnv(envName); ok {
		*target = envValue
	}
}
