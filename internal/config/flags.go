package config

import (
	"flag"
	"os"
	"time"

	"github.com/scampozano/deepurge/internal/flagx"
)

// parseFlags populates selected agent Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-p string   Walrus publisher base URL
//	-a string   Walrus aggregator base URL
//	-n int      storage duration, epochs
//	-t int      HTTP timeout, seconds
//	-s string   blob backend ("walrus" or "s3")
//	-b string   S3 bucket name
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-i string   index database path
//	-d string   downloads directory
//	-w int      folder sync worker count
//	-r string   Sui JSON-RPC URL
//	-k string   Sui anchor package ID
//	-g string   Sui registry object ID
//	-o string   Sui signer address
//	-l string   local anchor journal path
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - The timeout flag is accepted as an integer in seconds and then converted
//     to a time.Duration value.
// agentFlags are the short flags handled by parseFlags.
var agentFlags = []string{"-p", "-a", "-n", "-t", "-s", "-b", "-e", "-i", "-d", "-w", "-r", "-k", "-g", "-o", "-l"}

// ConsumedFlags lists every flag the config layer consumes, including the
// config-file flags, so the command dispatcher can strip them from os.Args
// before reading positional arguments.
var ConsumedFlags = append([]string{"-c", "-config"}, agentFlags...)

func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], agentFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.PublisherURL, "p", config.PublisherURL, "Walrus publisher base URL")
	fs.StringVar(&config.AggregatorURL, "a", config.AggregatorURL, "Walrus aggregator base URL")
	fs.IntVar(&config.StorageEpochs, "n", config.StorageEpochs, "storage duration in epochs")

	httpTimeout := fs.Int("t", int(config.HTTPTimeout.Seconds()), "HTTP timeout (in seconds)")

	fs.StringVar(&config.BlobBackend, "s", config.BlobBackend, "blob backend (walrus or s3)")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket name")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.IndexDBPath, "i", config.IndexDBPath, "index database path")
	fs.StringVar(&config.DownloadsDir, "d", config.DownloadsDir, "downloads directory")
	fs.IntVar(&config.SyncWorkers, "w", config.SyncWorkers, "folder sync worker count")
	fs.StringVar(&config.SuiRPCURL, "r", config.SuiRPCURL, "Sui JSON-RPC URL")
	fs.StringVar(&config.SuiPackageID, "k", config.SuiPackageID, "Sui anchor package ID")
	fs.StringVar(&config.SuiRegistryID, "g", config.SuiRegistryID, "Sui registry object ID")
	fs.StringVar(&config.SuiSignerAddress, "o", config.SuiSignerAddress, "Sui signer address")
	fs.StringVar(&config.LedgerPath, "l", config.LedgerPath, "local anchor journal path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.HTTPTimeout = time.Duration(*httpTimeout) * time.Second
}
