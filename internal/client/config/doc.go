// Package config loads runtime configuration for the securelogin console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the admin gRPC endpoint
//	-t int      per-request timeout (seconds)
//
// The JSON loader uses timex.Duration, so the timeout can be either a string
// like "5s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "5s"
//	}
package config
