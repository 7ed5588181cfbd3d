package config

import (
	"os"

	"github.com/spf13/pflag"
)

var CliArgs *CliConfig

type CliConfig struct {
	ConfigFile string
	Listen     string
	Debug      bool
	Version    bool
}

// NewFlagSet registers the receiver's flags on a fresh flag set.
func NewFlagSet(name string) (*pflag.FlagSet, *CliConfig) {
	args := &CliConfig{}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVar(&args.ConfigFile, "config", "", "Path to the config file")
	fs.StringVar(&args.Listen, "listen", "", "Address to listen on (overrides listen_address)")
	fs.BoolVarP(&args.Debug, "debug", "d", false, "Enable debug mode")
	fs.BoolVarP(&args.Version, "version", "v", false, "Print version and exit")
	return fs, args
}

// ParseArgs parses os.Args into the global CliArgs. It exits on bad flags.
func ParseArgs() {
	if CliArgs != nil {
		panic("already defined")
	}
	fs, args := NewFlagSet(os.Args[0])
	fs.Init(os.Args[0], pflag.ExitOnError)
	_ = fs.Parse(os.Args[1:])
	CliArgs = args
}
