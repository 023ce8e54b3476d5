package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/flagx"
)

// parseFlags populates cfg from -a and -t. Other arguments are ignored so
// the config-file flag can coexist.
func parseFlags(cfg *Config) {
	parseArgs(cfg, os.Args[1:])
}

func parseArgs(cfg *Config, argv []string) {
	args := flagx.FilterArgs(argv, []string{"-a", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the admin gRPC server")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
