// Package config loads blackjack settings from HCL, .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/joho/godotenv"
	"github.com/zclconf/go-cty/cty"

	"github.com/lox/blackjack/internal/auth"
	"github.com/lox/blackjack/internal/fileutil"
)

// DefaultFile is the config path used when none is given.
const DefaultFile = "blackjack.hcl"

// Environment variables that override file values.
const (
	EnvPlayers      = "BLACKJACK_PLAYERS"
	EnvSeed         = "BLACKJACK_SEED"
	EnvLogLevel     = "BLACKJACK_LOG_LEVEL"
	EnvMonitorAddr  = "BLACKJACK_MONITOR_ADDR"
	EnvMonitorToken = "BLACKJACK_MONITOR_TOKEN"
)

// Config is the complete blackjack configuration
type Config struct {
	Table    *TableConfig    `hcl:"table,block"`
	Log      *LogConfig      `hcl:"log,block"`
	Monitor  *MonitorConfig  `hcl:"monitor,block"`
	Assets   *AssetsConfig   `hcl:"assets,block"`
	Simulate *SimulateConfig `hcl:"simulate,block"`
}

// TableConfig controls the interactive table.
type TableConfig struct {
	Players int   `hcl:"players,optional"`
	Seed    int64 `hcl:"seed,optional"`
}

// LogConfig controls logging
type LogConfig struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// MonitorConfig controls the spectator websocket feed.
type MonitorConfig struct {
	Enabled bool   `hcl:"enabled,optional"`
	Address string `hcl:"address,optional"`

	// Token is a shared secret spectators must present. AuthURL delegates
	// the check to an external service instead.
	Token        string `hcl:"token,optional"`
	AuthURL      string `hcl:"auth_url,optional"`
	AuthSecret   string `hcl:"auth_secret,optional"`
	AuthFailOpen bool   `hcl:"auth_fail_open,optional"`
}

// Validator returns the spectator token validator the settings describe
func (m *MonitorConfig) Validator() auth.Validator {
	switch {
	case m.AuthURL != "":
		return auth.NewHTTPValidator(m.AuthURL, m.AuthSecret)
	case m.Token != "":
		return auth.NewSharedTokenValidator(m.Token)
	default:
		return auth.NewNoopValidator()
	}
}

// AssetsConfig points at the card image directory.
type AssetsConfig struct {
	Dir string `hcl:"dir,optional"`
}

// SimulateConfig controls batch simulation.
type SimulateConfig struct {
	Rounds  int `hcl:"rounds,optional"`
	Workers int `hcl:"workers,optional"`
	StandOn int `hcl:"stand_on,optional"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Table == nil {
		c.Table = &TableConfig{}
	}
	if c.Table.Players == 0 {
		c.Table.Players = 2
	}

	if c.Log == nil {
		c.Log = &LogConfig{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = "blackjack.log"
	}

	if c.Monitor == nil {
		c.Monitor = &MonitorConfig{}
	}
	if c.Monitor.Address == "" {
		c.Monitor.Address = "localhost:8081"
	}

	if c.Assets == nil {
		c.Assets = &AssetsConfig{}
	}
	if c.Assets.Dir == "" {
		c.Assets.Dir = "./cards"
	}

	if c.Simulate == nil {
		c.Simulate = &SimulateConfig{}
	}
	if c.Simulate.Rounds == 0 {
		c.Simulate.Rounds = 1000
	}
	if c.Simulate.Workers == 0 {
		c.Simulate.Workers = 4
	}
	if c.Simulate.StandOn == 0 {
		c.Simulate.StandOn = 17
	}
}

// Load reads configuration from an HCL file. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file.Body)
}

// Parse decodes configuration from HCL source held in memory.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file.Body)
}

func decode(body hcl.Body) (*Config, error) {
	var cfg Config
	diags := gohcl.DecodeBody(body, evalContext(), &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// evalContext exposes the process environment to expressions as env.NAME,
// so a file can say `file = "${env.HOME}/blackjack.log"`.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !hclName(name) {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

func hclName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// LoadDotEnv loads variables from .env style files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides values from environment variables looked up with lookup.
// Pass os.LookupEnv for the process environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	c.applyDefaults()

	if v, ok := lookup(EnvPlayers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid player count %q: %w", EnvPlayers, v, err)
		}
		c.Table.Players = n
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid seed %q: %w", EnvSeed, v, err)
		}
		c.Table.Seed = seed
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvMonitorAddr); ok && v != "" {
		c.Monitor.Address = v
	}
	if v, ok := lookup(EnvMonitorToken); ok && v != "" {
		c.Monitor.Token = v
	}
	return nil
}

// Validate validates the configuration. The player count is left to the
// engine, which clamps it.
func (c *Config) Validate() error {
	c.applyDefaults()

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if _, _, err := net.SplitHostPort(c.Monitor.Address); err != nil {
		return fmt.Errorf("invalid monitor address %q: %w", c.Monitor.Address, err)
	}
	if c.Monitor.Token != "" && c.Monitor.AuthURL != "" {
		return fmt.Errorf("monitor: token and auth_url are mutually exclusive")
	}
	if c.Simulate.Rounds < 1 {
		return fmt.Errorf("simulate: rounds must be positive, got %d", c.Simulate.Rounds)
	}
	if c.Simulate.Workers < 1 {
		return fmt.Errorf("simulate: workers must be at least 1, got %d", c.Simulate.Workers)
	}
	if c.Simulate.StandOn < 2 || c.Simulate.StandOn > 21 {
		return fmt.Errorf("simulate: stand_on must be between 2 and 21, got %d", c.Simulate.StandOn)
	}
	return nil
}

// Encode renders the configuration as HCL source.
func (c *Config) Encode() []byte {
	c.applyDefaults()
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(c, f.Body())
	return hclwrite.Format(f.Bytes())
}

// Write saves the configuration to filename. Unless overwrite is set an
// existing file is left alone and fileutil.ErrExists is returned.
func Write(filename string, cfg *Config, overwrite bool) error {
	data := cfg.Encode()
	if overwrite {
		return fileutil.WriteFileAtomic(filename, data, 0o644)
	}
	return fileutil.CreateFileAtomic(filename, data, 0o644)
}
