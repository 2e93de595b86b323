package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, c.PublisherURL, "https://publisher.walrus-testnet.walrus.space")
	assert.Equal(t, c.AggregatorURL, "https://aggregator.walrus-testnet.walrus.space")
	assert.Equal(t, c.StorageEpochs, 10)
	assert.Equal(t, c.HTTPTimeout, 120*time.Second)
	assert.Equal(t, c.BlobBackend, BackendWalrus)
	assert.Equal(t, c.S3RootUser, "admin")
	assert.Equal(t, c.S3RootPassword, "secretpassword")
	assert.Equal(t, c.S3Bucket, "vault")
	assert.Equal(t, c.S3Region, "us-east-1")
	assert.Equal(t, c.S3BaseEndpoint, "http://127.0.0.1:9000/")
	assert.Equal(t, c.IndexDBPath, "vault_index.db")
	assert.Equal(t, c.DownloadsDir, "downloads")
	assert.Equal(t, c.DashboardBaseURL, "http://localhost:5050")
	assert.Equal(t, c.SyncWorkers, 4)
	assert.Equal(t, c.SuiRPCURL, "https://fullnode.testnet.sui.io:443")
	assert.Equal(t, c.LedgerPath, "anchor_ledger.json")
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, c.PublisherURL, "https://publisher.walrus-testnet.walrus.space")
	assert.Equal(t, c.AggregatorURL, "https://aggregator.walrus-testnet.walrus.space")
	assert.Equal(t, c.StorageEpochs, 10)
	assert.Equal(t, c.BlobBackend, BackendWalrus)
	assert.Equal(t, c.IndexDBPath, "vault_index.db")
	assert.Equal(t, c.LedgerPath, "anchor_ledger.json")
}

func TestOnChainConfigured(t *testing.T) {
	tests := []struct {
		name     string
		pkg      string
		registry string
		signer   string
		want     bool
	}{
		{"all set", "0x1", "0x2", "0x3", true},
		{"missing package", "", "0x2", "0x3", false},
		{"missing registry", "0x1", "", "0x3", false},
		{"missing signer", "0x1", "0x2", "", false},
		{"none set", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{SuiPackageID: tt.pkg, SuiRegistryID: tt.registry, SuiSignerAddress: tt.signer}
			assert.Equal(t, tt.want, c.OnChainConfigured())
		})
	}
}
