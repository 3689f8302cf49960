package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/lox/blackjack/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	ConfigFile string `name:"config-file" short:"c" default:"${config_file}" help:"HCL config file"`
	EnvFile    string `name:"env-file" default:".env" help:"Optional .env file with BLACKJACK_* overrides"`
	Debug      bool   `help:"Enable debug logging"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play at an interactive table"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate rounds with automatic players"`
	Config   ConfigCmd        `cmd:"" help:"Manage the config file"`
}

// loadConfig layers the config file, the .env file and the environment
func (g *Globals) loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(g.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(g.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newParser(cli *CLI, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("blackjack"),
		kong.Description("Blackjack table for one dealer and up to six players"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":     version,
			"config_file": config.DefaultFile,
		},
	}, opts...)
	return kong.New(cli, opts...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
