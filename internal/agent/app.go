// Package agent initializes and runs the vault agent. It wires the
// configured blob store backend, the local index database, the vault
// service and the anchor registry, then dispatches one subcommand per
// invocation.
package agent

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/scampozano/deepurge/internal/anchor"
	"github.com/scampozano/deepurge/internal/blobstore"
	"github.com/scampozano/deepurge/internal/config"
	"github.com/scampozano/deepurge/internal/logging"
	"github.com/scampozano/deepurge/internal/suirpc"
	"github.com/scampozano/deepurge/internal/vault"
	"github.com/scampozano/deepurge/internal/vault/index"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	vault    *vault.Service
	registry anchor.Registry
	db       *sql.DB
	out      io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	logger := logging.NewSlogLogger(sl)

	store, err := newBlobStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	db, err := index.InitDatabase(ctx, c.IndexDBPath)
	if err != nil {
		return nil, fmt.Errorf("index db init error: %w", err)
	}

	repo := index.NewSQLiteRepository(db)
	vs := vault.NewService(store, repo, logger, c.SyncWorkers)

	registry, err := newRegistry(c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("anchor registry init error: %w", err)
	}

	return &App{
		config:   c,
		logger:   logger,
		vault:    vs,
		registry: registry,
		db:       db,
		out:      os.Stdout,
	}, nil
}

func newBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch c.BlobBackend {
	case config.BackendS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Options{
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
		})
	case config.BackendWalrus:
		return blobstore.NewWalrusClient(c.PublisherURL, c.AggregatorURL, c.StorageEpochs, c.HTTPTimeout), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", c.BlobBackend)
	}
}

// newRegistry chooses the anchor backend once at startup: on-chain when
// all Sui identifiers are configured, the local journal otherwise.
func newRegistry(c *config.Config) (anchor.Registry, error) {
	if c.OnChainConfigured() {
		ledger := suirpc.NewClient(c.SuiRPCURL, c.SuiPackageID, c.SuiRegistryID, c.SuiSignerAddress, c.HTTPTimeout)
		return anchor.NewChainRegistry(ledger), nil
	}
	return anchor.NewLocalLedger(c.LedgerPath)
}

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (a *App) Close() error {
	return a.db.Close()
}

// Run executes one subcommand and returns its error. The context is
// cancelled on SIGINT/SIGTERM so a long folder sync stops between files.
func (a *App) Run(ctx context.Context, args []string) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	a.initSignalHandler(cancelFunc)

	if len(args) == 0 {
		a.usage()
		return fmt.Errorf("no command given")
	}

	cmd := args[0]
	rest := args[1:]

	switch cmd {
	case "store":
		return a.cmdStore(ctx, rest)
	case "retrieve":
		return a.cmdRetrieve(ctx, rest)
	case "sync":
		return a.cmdSync(ctx, rest)
	case "restore":
		return a.cmdRestore(ctx, rest)
	case "list":
		return a.cmdList(ctx)
	case "share":
		return a.cmdShare(rest)
	case "anchor":
		return a.cmdAnchor(ctx, rest)
	case "verify":
		return a.cmdVerify(ctx, rest)
	case "anchors":
		return a.cmdAnchors(ctx, rest)
	case "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, `Usage: deepurge <command> [args]

Commands:
  store <file> [-P]            encrypt a file and upload it, print the access token
  retrieve <token>             download and decrypt an object into the downloads dir
  sync <dir>                   encrypt and upload every file in a folder, print the folder token
  restore <token> [dir]        download and decrypt a synced folder
  list                         show locally indexed uploads
  share <token>                print a share link carrying the token in the URL fragment
  anchor <period> <roothash|-|@report.json>
                               record a period root hash (write-once); "-" reads
                               the hash from stdin, "@file" hashes a JSON report
                               through its canonical form
  verify <period> <roothash>   compare a root hash against the anchored record
  anchors [limit]              show anchored periods`)
}
