package config

import (
	"encoding/json"
	"os"

	"github.com/scampozano/deepurge/internal/flagx"
	"github.com/scampozano/deepurge/internal/timex"
)

// JsonConfig is the JSON-file shape of Config. It uses timex.Duration for
// the timeout so config files can write either "120s" or a nanosecond
// count. Values are copied into the runtime Config after unmarshalling;
// zero values leave the existing (default) setting untouched.
type JsonConfig struct {
	PublisherURL     string         `json:"publisher_url"`
	AggregatorURL    string         `json:"aggregator_url"`
	StorageEpochs    int            `json:"storage_epochs"`
	HTTPTimeout      timex.Duration `json:"http_timeout"`
	BlobBackend      string         `json:"blob_backend"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	IndexDBPath      string         `json:"index_db_path"`
	DownloadsDir     string         `json:"downloads_dir"`
	DashboardBaseURL string         `json:"dashboard_base_url"`
	SyncWorkers      int            `json:"sync_workers"`
	SuiRPCURL        string         `json:"sui_rpc_url"`
	SuiPackageID     string         `json:"sui_package_id"`
	SuiRegistryID    string         `json:"sui_registry_id"`
	SuiSignerAddress string         `json:"sui_signer_address"`
	LedgerPath       string         `json:"ledger_path"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. If no flag is set, nothing is
// loaded. An unreadable or invalid file panics: a config file that exists
// but cannot be honored should stop the agent immediately.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.PublisherURL, c.PublisherURL)
	setString(&config.AggregatorURL, c.AggregatorURL)
	setInt(&config.StorageEpochs, c.StorageEpochs)
	if c.HTTPTimeout.Duration != 0 {
		config.HTTPTimeout = c.HTTPTimeout.Duration
	}
	setString(&config.BlobBackend, c.BlobBackend)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.IndexDBPath, c.IndexDBPath)
	setString(&config.DownloadsDir, c.DownloadsDir)
	setString(&config.DashboardBaseURL, c.DashboardBaseURL)
	setInt(&config.SyncWorkers, c.SyncWorkers)
	setString(&config.SuiRPCURL, c.SuiRPCURL)
	setString(&config.SuiPackageID, c.SuiPackageID)
	setString(&config.SuiRegistryID, c.SuiRegistryID)
	setString(&config.SuiSignerAddress, c.SuiSignerAddress)
	setString(&config.LedgerPath, c.LedgerPath)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
