package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/flagx"
)

var knownFlags = []string{
	"-a", "-r", "-store", "-m", "-n", "-d", "-k", "-s", "-t", "-bcrypt-cost", "-admin-password",
	"-u", "-p", "-b", "-g", "-e", "-trusted-proxies", "-l",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string              HTTP bind address (e.g. ":8080")
//	-r string              admin gRPC bind address (e.g. ":50051")
//	-store string          store driver: mongo, postgres or memory
//	-m string              MongoDB URI
//	-n string              MongoDB database name
//	-d string              PostgreSQL DSN
//	-k string              Redis URL for session revocation
//	-s string              JWT HMAC secret key
//	-t int                 session token validity, minutes
//	-bcrypt-cost int       bcrypt work factor
//	-admin-password string password of the bootstrap admin account
//	-u, -p, -b, -g, -e     S3 user, password, bucket, region, base endpoint
//	-trusted-proxies string comma-separated proxy IPs/CIDRs allowed to set X-Forwarded-For
//	-l string              log level
//
// os.Args is first narrowed with flagx.FilterArgs so -c/-config and flags of
// other components do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "r", config.EndpointAddrGRPC, "admin gRPC address and port")
	fs.StringVar(&config.StoreDriver, "store", config.StoreDriver, "store driver (mongo, postgres, memory)")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "MongoDB database")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&config.RedisURL, "k", config.RedisURL, "Redis URL")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTokenValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")

	fs.IntVar(&config.BcryptCost, "bcrypt-cost", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.DefaultAdminPassword, "admin-password", config.DefaultAdminPassword, "default admin password")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.TrustedProxies, "trusted-proxies", config.TrustedProxies, "trusted reverse proxies (IPs or CIDRs, comma-separated)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*sessionTokenValidity) * time.Minute
}
