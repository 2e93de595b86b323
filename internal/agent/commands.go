package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/scampozano/deepurge/internal/common"
	"github.com/scampozano/deepurge/internal/cryptox"
	"github.com/scampozano/deepurge/internal/filex"
	"github.com/scampozano/deepurge/internal/hashx"
	"github.com/scampozano/deepurge/internal/sharetoken"
	"github.com/scampozano/deepurge/internal/vault"
)

// kdfSalt domain-separates passphrase-derived vault keys from any other
// argon2id use of the same passphrase.
var kdfSalt = []byte("deepurge/vault/kdf/v1")

func (a *App) cmdStore(ctx context.Context, args []string) error {
	var path string
	usePassphrase := false
	for _, arg := range args {
		if arg == "-P" {
			usePassphrase = true
			continue
		}
		path = arg
	}
	if path == "" {
		return fmt.Errorf("usage: store <file> [-P]")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	name := filepath.Base(path)

	var token sharetoken.Token
	if usePassphrase {
		pw, err := GetPassword(a.out)
		if err != nil {
			return err
		}
		key := cryptox.DeriveKey(pw, kdfSalt)
		common.WipeByteArray(pw)
		token, err = a.vault.StoreObjectWithKey(ctx, data, name, key)
		if err != nil {
			return err
		}
	} else {
		token, err = a.vault.StoreObject(ctx, data, name)
		if err != nil {
			return err
		}
	}

	encoded, err := sharetoken.Encode(token)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "stored %s (%d bytes)\n", name, len(data))
	fmt.Fprintf(a.out, "token: %s\n", encoded)
	return nil
}

func (a *App) cmdRetrieve(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: retrieve <token>")
	}

	token, err := sharetoken.Decode(args[0])
	if err != nil {
		return err
	}

	dir, err := filex.EnsureSubdDir(a.config.DownloadsDir)
	if err != nil {
		return err
	}

	path, err := a.vault.RetrieveToFile(ctx, token, dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "retrieved to %s\n", path)
	return nil
}

func (a *App) cmdSync(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: sync <dir>")
	}

	manifest, token, err := a.vault.SyncFolder(ctx, args[0])
	if err != nil {
		var partial *vault.PartialFailureError
		if errors.As(err, &partial) {
			fmt.Fprintf(a.out, "sync incomplete, %d files failed:\n", len(partial.FailedPaths))
			for _, p := range partial.FailedPaths {
				fmt.Fprintf(a.out, "  %s\n", p)
			}
		}
		return err
	}

	encoded, err := sharetoken.Encode(token)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "synced %d files from %s\n", manifest.FileCount, manifest.FolderName)
	fmt.Fprintf(a.out, "root hash: %s\n", manifest.RootHash)
	fmt.Fprintf(a.out, "token: %s\n", encoded)
	return nil
}

func (a *App) cmdRestore(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: restore <token> [dir]")
	}

	token, err := sharetoken.Decode(args[0])
	if err != nil {
		return err
	}

	destDir := a.config.DownloadsDir
	if len(args) == 2 {
		destDir = args[1]
	}
	destDir, err = filex.EnsureSubdDir(destDir)
	if err != nil {
		return err
	}

	manifest, err := a.vault.RetrieveFolder(ctx, token, destDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "restored %d files from %s into %s\n", manifest.FileCount, manifest.FolderName, destDir)
	fmt.Fprintf(a.out, "root hash verified: %s\n", manifest.RootHash)
	return nil
}

func (a *App) cmdList(ctx context.Context) error {
	records, err := a.vault.ListObjects(ctx)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(a.out, "no uploads indexed")
		return nil
	}

	for _, r := range records {
		fmt.Fprintf(a.out, "%s  %-8s  %-30s  %d bytes  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.Kind, r.Name, r.PlainSize, r.ObjectID)
	}
	return nil
}

func (a *App) cmdShare(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: share <token>")
	}

	token, err := sharetoken.Decode(args[0])
	if err != nil {
		return err
	}

	link, err := sharetoken.ShareLink(a.config.DashboardBaseURL, token)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\n", link)
	return nil
}

func (a *App) cmdAnchor(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: anchor <period> <roothash|->")
	}

	periodID := args[0]
	rootHash := args[1]

	switch {
	case rootHash == "-":
		// "-" takes the hash from stdin so sync output can be piped in.
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("cannot read root hash from stdin: %w", err)
		}
		rootHash = strings.TrimSpace(line)
	case strings.HasPrefix(rootHash, "@"):
		// "@report.json" hashes a report file through its canonical JSON
		// form, so the same report always anchors to the same digest.
		h, err := reportRootHash(strings.TrimPrefix(rootHash, "@"))
		if err != nil {
			return err
		}
		rootHash = h
	}
	if rootHash == "" {
		return fmt.Errorf("empty root hash")
	}

	rec, err := a.registry.Anchor(ctx, periodID, rootHash)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyAnchored) {
			fmt.Fprintf(a.out, "period %s is already anchored\n", periodID)
		}
		return err
	}

	fmt.Fprintf(a.out, "anchored %s -> %s (%s)\n", rec.PeriodID, rec.RootHash, rec.Source)
	if rec.TxDigest != "" {
		fmt.Fprintf(a.out, "tx: %s\n", rec.TxDigest)
	}
	return nil
}

// reportRootHash reads a JSON report file and returns the hex digest of
// its canonical form (keys sorted, no insignificant whitespace), so
// structurally equal reports anchor identically regardless of field order.
func reportRootHash(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read report %s: %w", path, err)
	}

	var report any
	if err := json.Unmarshal(raw, &report); err != nil {
		return "", fmt.Errorf("report %s is not valid JSON: %w", path, err)
	}

	d, err := hashx.FingerprintCanonical(report)
	if err != nil {
		return "", fmt.Errorf("hash report %s: %w", path, err)
	}
	return d.String(), nil
}

func (a *App) cmdVerify(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: verify <period> <roothash>")
	}

	v, err := a.registry.Verify(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	if v.Verified {
		fmt.Fprintf(a.out, "verified (%s)\n", v.Source)
		return nil
	}

	fmt.Fprintf(a.out, "NOT verified: %s\n", v.Reason)
	if v.StoredHash != "" {
		fmt.Fprintf(a.out, "stored hash: %s\n", v.StoredHash)
	}
	return nil
}

func (a *App) cmdAnchors(ctx context.Context, args []string) error {
	limit := 0
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("usage: anchors [limit]")
		}
		limit = n
	}

	records, err := a.registry.List(ctx, limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(a.out, "no anchored periods")
		return nil
	}

	for _, r := range records {
		fmt.Fprintf(a.out, "%s  %s  %s  %s\n",
			r.PeriodID, r.RootHash, r.AnchoredAt.Format("2006-01-02 15:04:05"), r.Source)
	}
	return nil
}
