package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/blackjack/internal/config"
)

// ConfigCmd groups config file commands
type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write a config file with default settings"`
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration"`
}

// ConfigInitCmd writes the default config
type ConfigInitCmd struct {
	Path  string `arg:"" optional:"" help:"Destination (defaults to --config-file)"`
	Force bool   `short:"f" help:"Overwrite an existing file"`

	stdout io.Writer
}

func (c *ConfigInitCmd) Run(g *Globals) error {
	path := c.Path
	if path == "" {
		path = g.ConfigFile
	}
	if err := config.Write(path, config.DefaultConfig(), c.Force); err != nil {
		return err
	}
	fmt.Fprintf(writerOr(c.stdout), "Wrote %s\n", path)
	return nil
}

// ConfigShowCmd prints the merged configuration as HCL
type ConfigShowCmd struct {
	stdout io.Writer
}

func (c *ConfigShowCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	_, err = writerOr(c.stdout).Write(cfg.Encode())
	return err
}

func writerOr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
