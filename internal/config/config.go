// Package config handles configuration for the Deepurge agent, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Blob store backends.
const (
	BackendWalrus = "walrus"
	BackendS3     = "s3"
)

// Config holds runtime settings for the agent.
//
// Fields:
//   - PublisherURL / AggregatorURL: Walrus endpoints for upload/download.
//   - StorageEpochs: Walrus storage duration requested per upload.
//   - HTTPTimeout: bound on every blob-store and ledger round trip.
//   - BlobBackend: which blob store implementation to use ("walrus" or "s3").
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
//   - IndexDBPath: SQLite file for the local convenience index.
//   - DownloadsDir: where retrieved plaintext is written.
//   - DashboardBaseURL: base for generated share links.
//   - SyncWorkers: per-file parallelism during folder sync.
//   - SuiRPCURL / SuiPackageID / SuiRegistryID / SuiSignerAddress: on-chain
//     anchor contract identifiers. When package, registry and signer are all
//     set the anchor registry runs on-chain; otherwise it uses LedgerPath.
type Config struct {
	PublisherURL     string
	AggregatorURL    string
	StorageEpochs    int
	HTTPTimeout      time.Duration
	BlobBackend      string
	S3RootUser       string
	S3RootPassword   string
	S3Bucket         string
	S3Region         string
	S3BaseEndpoint   string
	IndexDBPath      string
	DownloadsDir     string
	DashboardBaseURL string
	SyncWorkers      int
	SuiRPCURL        string
	SuiPackageID     string
	SuiRegistryID    string
	SuiSignerAddress string
	LedgerPath       string
}

// LoadDefaults populates Config with development defaults pointing at the
// public testnet endpoints.
func (c *Config) LoadDefaults() {
	c.PublisherURL = "https://publisher.walrus-testnet.walrus.space"
	c.AggregatorURL = "https://aggregator.walrus-testnet.walrus.space"
	c.StorageEpochs = 10
	c.HTTPTimeout = 120 * time.Second
	c.BlobBackend = BackendWalrus
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "vault"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.IndexDBPath = "vault_index.db"
	c.DownloadsDir = "downloads"
	c.DashboardBaseURL = "http://localhost:5050"
	c.SyncWorkers = 4
	c.SuiRPCURL = "https://fullnode.testnet.sui.io:443"
	c.LedgerPath = "anchor_ledger.json"
}

// OnChainConfigured reports whether all on-chain anchor identifiers are
// present. The choice between backends is made once, from this, at
// startup.
func (c *Config) OnChainConfigured() bool {
	return c.SuiPackageID != "" && c.SuiRegistryID != "" && c.SuiSignerAddress != ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
