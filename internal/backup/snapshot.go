package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

const (
	snapshotSuffix      = ".db.zst"
	snapshotContentType = "application/zstd"
	keyTimeLayout       = "20060102T150405Z"
)

// sqliteMagic opens every SQLite 3 database file.
var sqliteMagic = []byte("SQLite format 3\x00")

// Snapshotter writes a consistent copy of the live database to a path.
// *storage.DB implements it with VACUUM INTO.
type Snapshotter interface {
	CreateSnapshot(ctx context.Context, dest string) error
}

// Recorder receives backup outcomes. *metrics.Metrics implements it.
type Recorder interface {
	RecordBackup(operation, status string)
}

// Manager snapshots the database, compresses it and stores it remotely.
type Manager struct {
	client   *Client
	source   Snapshotter
	tempDir  string
	recorder Recorder
	now      func() time.Time
}

// NewManager creates a snapshot manager. tempDir defaults to os.TempDir;
// recorder may be nil.
func NewManager(client *Client, source Snapshotter, tempDir string, recorder Recorder) *Manager {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Manager{
		client:   client,
		source:   source,
		tempDir:  tempDir,
		recorder: recorder,
		now:      time.Now,
	}
}

// Push uploads a new snapshot and returns its key.
func (m *Manager) Push(ctx context.Context) (key string, err error) {
	defer func() { m.record("push", err) }()

	if err := os.MkdirAll(m.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	snapshotPath := filepath.Join(m.tempDir, "portal-snapshot-"+uuid.NewString()+".db")
	if err := m.source.CreateSnapshot(ctx, snapshotPath); err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(snapshotPath)

	compressedPath := snapshotPath + ".zst"
	if err := CompressFile(snapshotPath, compressedPath); err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}
	defer os.Remove(compressedPath)

	f, err := os.Open(compressedPath)
	if err != nil {
		return "", fmt.Errorf("open compressed snapshot: %w", err)
	}
	defer f.Close()

	key = m.newKey()
	etag, err := m.client.Upload(ctx, key, f, snapshotContentType)
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Snapshot uploaded", "key", key, "etag", etag)
	return key, nil
}

// Pull restores the snapshot at key (the newest one when key is empty) to
// dest and returns the key restored. dest is replaced only after the
// download decompressed into a valid SQLite file.
func (m *Manager) Pull(ctx context.Context, key, dest string) (restored string, err error) {
	defer func() { m.record("pull", err) }()

	if key == "" {
		if key, err = m.client.Latest(ctx); err != nil {
			return "", err
		}
	}

	body, err := m.client.Download(ctx, key)
	if err != nil {
		return "", err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create destination dir: %w", err)
	}
	tmp := dest + ".restore-" + uuid.NewString()
	if err := DecompressStream(body, tmp); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("decompress snapshot: %w", err)
	}
	if err := checkSQLiteFile(tmp); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("replace %s: %w", dest, err)
	}

	slog.InfoContext(ctx, "Snapshot restored", "key", key, "dest", dest)
	return key, nil
}

// Run pushes a snapshot every interval until ctx is done, each bounded by
// timeout when positive. Failures are logged and retried on the next tick.
func (m *Manager) Run(ctx context.Context, interval, timeout time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.scheduledPush(ctx, timeout)
		}
	}
}

func (m *Manager) scheduledPush(ctx context.Context, timeout time.Duration) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if _, err := m.Push(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "Scheduled snapshot failed", "error", err)
	}
}

func (m *Manager) newKey() string {
	return fmt.Sprintf("%sportal-%s-%s%s",
		m.client.Prefix(),
		m.now().UTC().Format(keyTimeLayout),
		uuid.NewString()[:8],
		snapshotSuffix)
}

func (m *Manager) record(operation string, err error) {
	if m.recorder == nil {
		return
	}
	status := "success"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	m.recorder.RecordBackup(operation, status)
}

func checkSQLiteFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open restored file: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(f, header); err != nil || !bytes.Equal(header, sqliteMagic) {
		return errors.New("backup: restored file is not a SQLite database")
	}
	return nil
}

// CompressFile compresses srcPath with zstd into dstPath.
func CompressFile(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("compress: open source: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("compress: create dest: %w", err)
	}
	defer dst.Close()

	encoder, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("compress: create encoder: %w", err)
	}

	if _, err := io.Copy(encoder, src); err != nil {
		_ = encoder.Close()
		return fmt.Errorf("compress: copy: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("compress: close encoder: %w", err)
	}

	return dst.Sync()
}

// DecompressStream decompresses a zstd stream into dstPath.
func DecompressStream(r io.Reader, dstPath string) error {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("decompress: create decoder: %w", err)
	}
	defer decoder.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("decompress: create dest: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, decoder); err != nil {
		return fmt.Errorf("decompress: copy: %w", err)
	}

	return nil
}
