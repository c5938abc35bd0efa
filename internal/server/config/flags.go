package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/questkeeper/internal/flagx"
)

var serverFlags = []string{
	"-a", "-o", "-driver", "-d", "-migrate", "-s", "-l", "-log-format", "-tracing",
	"-u", "-p", "-b", "-g", "-e", "-ttl",
}

// parseFlags overlays the server's command-line flags.
//
// Supported flags:
//
//	-a string        gRPC bind address (e.g., ":50051")
//	-o string        ops HTTP bind address (e.g., ":9090")
//	-driver string   database driver: pgx or sqlite
//	-d string        database DSN
//	-migrate bool    run migrations on start
//	-s string        JWT HMAC secret key
//	-l string        log level: debug, info, warn, error
//	-log-format      json or text
//	-tracing bool    export spans to stdout
//	-u / -p string   S3 user and password
//	-b string        S3 bucket
//	-g string        S3 region
//	-e string        S3 base endpoint
//	-ttl duration    presigned URL lifetime (e.g., "15m")
//
// Boolean flags take the "-migrate=false" form.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("questkeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address")
	fs.StringVar(&config.EndpointAddrOps, "o", config.EndpointAddrOps, "ops HTTP address")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.BoolVar(&config.MigrateOnStart, "migrate", config.MigrateOnStart, "run migrations on start")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format")
	fs.BoolVar(&config.TracingEnabled, "tracing", config.TracingEnabled, "export spans to stdout")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.DurationVar(&config.S3PresignTTL, "ttl", config.S3PresignTTL, "presigned URL lifetime")

	return fs.Parse(flagx.FilterArgs(args, serverFlags))
}
