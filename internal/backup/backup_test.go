package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/sisemasexp/portal/internal/storage"
)

// memoryBucket is an in-memory objectAPI that pages listings two keys at a time.
type memoryBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{objects: map[string][]byte{}}
}

func (b *memoryBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if b.putErr != nil {
		return nil, b.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{ETag: aws.String(`"etag-` + strconv.Itoa(len(data)) + `"`)}, nil
}

func (b *memoryBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (b *memoryBucket) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var keys []string
	for k := range b.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := min(start+2, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(k),
			Size: aws.Int64(int64(len(b.objects[k]))),
		})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

type backupEvent struct{ op, status string }

type recorderStub struct {
	events []backupEvent
}

func (r *recorderStub) RecordBackup(operation, status string) {
	r.events = append(r.events, backupEvent{operation, status})
}

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(context.Background(), filepath.Join(t.TempDir(), "portal.db"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestManager_PushPullRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	if err := db.CreateProgram(ctx, storage.Program{Code: 7, Name: "Medicina"}); err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}

	bucket := newMemoryBucket()
	rec := &recorderStub{}
	m := NewManager(newClient(bucket, "bucket", "backups"), db, t.TempDir(), rec)

	key, err := m.Push(ctx)
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if !strings.HasPrefix(key, "backups/portal-") || !strings.HasSuffix(key, snapshotSuffix) {
		t.Errorf("Push() key = %q", key)
	}

	dest := filepath.Join(t.TempDir(), "restored", "portal.db")
	restored, err := m.Pull(ctx, "", dest)
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if restored != key {
		t.Errorf("Pull() restored %q, want %q", restored, key)
	}

	copyDB, err := storage.New(ctx, dest)
	if err != nil {
		t.Fatalf("open restored db: %v", err)
	}
	defer func() { _ = copyDB.Close() }()
	p, err := copyDB.GetProgramByCode(ctx, 7)
	if err != nil || p.Name != "Medicina" {
		t.Errorf("restored program = %+v, %v", p, err)
	}

	want := []backupEvent{{"push", "success"}, {"pull", "success"}}
	if !slices.Equal(rec.events, want) {
		t.Errorf("recorded = %v, want %v", rec.events, want)
	}
}

func TestManager_PullEmptyBucket(t *testing.T) {
	t.Parallel()
	rec := &recorderStub{}
	m := NewManager(newClient(newMemoryBucket(), "bucket", ""), nil, t.TempDir(), rec)

	_, err := m.Pull(context.Background(), "", filepath.Join(t.TempDir(), "x.db"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Pull() error = %v, want ErrNotFound", err)
	}
	if len(rec.events) != 1 || rec.events[0].status != "not_found" {
		t.Errorf("recorded = %v", rec.events)
	}
}

func TestManager_PullMissingKey(t *testing.T) {
	t.Parallel()
	m := NewManager(newClient(newMemoryBucket(), "bucket", ""), nil, t.TempDir(), nil)

	_, err := m.Pull(context.Background(), "nope.db.zst", filepath.Join(t.TempDir(), "x.db"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Pull() error = %v, want ErrNotFound", err)
	}
}

func TestManager_PullRejectsNonSQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	src := filepath.Join(dir, "garbage.txt")
	if err := os.WriteFile(src, []byte("not a database at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	compressed := src + ".zst"
	if err := CompressFile(src, compressed); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(compressed)
	if err != nil {
		t.Fatal(err)
	}

	bucket := newMemoryBucket()
	bucket.objects["p/portal-x"+snapshotSuffix] = data
	m := NewManager(newClient(bucket, "bucket", "p/"), nil, dir, nil)

	dest := filepath.Join(dir, "portal.db")
	if err := os.WriteFile(dest, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Pull(ctx, "", dest); err == nil {
		t.Fatal("Pull() expected error for non-SQLite payload")
	}
	got, _ := os.ReadFile(dest)
	if string(got) != "original" {
		t.Error("destination replaced by an invalid snapshot")
	}
}

func TestManager_PushUploadError(t *testing.T) {
	t.Parallel()
	bucket := newMemoryBucket()
	bucket.putErr = errors.New("access denied")
	rec := &recorderStub{}
	m := NewManager(newClient(bucket, "bucket", ""), newTestDB(t), t.TempDir(), rec)

	if _, err := m.Push(context.Background()); err == nil {
		t.Fatal("Push() expected error")
	}
	if len(rec.events) != 1 || rec.events[0] != (backupEvent{"push", "error"}) {
		t.Errorf("recorded = %v", rec.events)
	}
}

func TestClient_ListNewestFirstAcrossPages(t *testing.T) {
	t.Parallel()
	bucket := newMemoryBucket()
	for _, k := range []string{
		"b/portal-20260101T000000Z-aaaa.db.zst",
		"b/portal-20260301T000000Z-cccc.db.zst",
		"b/portal-20260201T000000Z-bbbb.db.zst",
		"b/notes.txt",
		"other/portal-20270101T000000Z-zzzz.db.zst",
	} {
		bucket.objects[k] = []byte("x")
	}
	c := newClient(bucket, "bucket", "b")

	objects, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var keys []string
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	want := []string{
		"b/portal-20260301T000000Z-cccc.db.zst",
		"b/portal-20260201T000000Z-bbbb.db.zst",
		"b/portal-20260101T000000Z-aaaa.db.zst",
	}
	if !slices.Equal(keys, want) {
		t.Errorf("List() keys = %v, want %v", keys, want)
	}

	latest, err := c.Latest(context.Background())
	if err != nil || latest != want[0] {
		t.Errorf("Latest() = %q, %v", latest, err)
	}
}

func TestManager_KeyUsesUTCTimestamp(t *testing.T) {
	t.Parallel()
	m := NewManager(newClient(newMemoryBucket(), "bucket", "x/"), nil, "", nil)
	m.now = func() time.Time {
		return time.Date(2026, 3, 15, 12, 4, 5, 0, time.FixedZone("COT", -5*3600))
	}
	key := m.newKey()
	if !strings.HasPrefix(key, "x/portal-20260315T170405Z-") {
		t.Errorf("newKey() = %q", key)
	}
}

func TestCompressDecompress(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "source.txt")
	compressed := filepath.Join(dir, "source.txt.zst")
	out := filepath.Join(dir, "out.txt")

	payload := strings.Repeat("Ingeniería de Sistemas; ", 500)
	if err := os.WriteFile(src, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CompressFile(src, compressed); err != nil {
		t.Fatalf("CompressFile: %v", err)
	}

	f, err := os.Open(compressed)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := DecompressStream(f, out); err != nil {
		t.Fatalf("DecompressStream: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != payload {
		t.Error("round trip changed content")
	}
}

func TestNew_RequiresConfig(t *testing.T) {
	t.Parallel()
	if _, err := New(context.Background(), Config{Endpoint: "https://x"}); err == nil {
		t.Error("New() expected error for incomplete config")
	}
}
