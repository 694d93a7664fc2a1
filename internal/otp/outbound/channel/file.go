package channel

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/clock"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/storage"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/uid"
)

const defaultFilePath = "otp_codes.txt"

func fileLine(at time.Time, to entity.Recipient, code string) string {
	return fmt.Sprintf("[%s] User ID: %d, Operation ID: %s, Code: %s\n",
		at.Format(time.RFC3339), to.OwnerID, to.OperationID, code)
}

// LocalFile appends one line per delivery to a local file.
type LocalFile struct {
	path  string
	clock clock.Clocker
	mu    sync.Mutex
}

func NewLocalFile(p string, clk clock.Clocker) *LocalFile {
	if p == "" {
		p = defaultFilePath
	}
	return &LocalFile{path: p, clock: clk}
}

func (f *LocalFile) Send(_ context.Context, to entity.Recipient, code string) error {
	line := fileLine(f.clock.Now(), to, code)

	f.mu.Lock()
	defer f.mu.Unlock()

	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := fh.WriteString(line); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

// ObjectFile writes each delivery as its own object, for deployments without
// a writable local disk.
type ObjectFile struct {
	store  storage.Storage
	bucket string
	prefix string
	clock  clock.Clocker
	uuid   uid.StringID
}

func NewObjectFile(store storage.Storage, bucket, prefix string, clk clock.Clocker, id uid.StringID) *ObjectFile {
	return &ObjectFile{store: store, bucket: bucket, prefix: prefix, clock: clk, uuid: id}
}

func (f *ObjectFile) Send(ctx context.Context, to entity.Recipient, code string) error {
	now := f.clock.Now()
	body := []byte(fileLine(now, to, code))
	key := path.Join(f.prefix, now.Format("2006/01/02"), strconv.FormatInt(to.OwnerID, 10), f.uuid.Generate()+".txt")

	_, err := f.store.PutObject(ctx, f.bucket, key, bytes.NewReader(body), storage.PutOptions{
		Size:        int64(len(body)),
		ContentType: "text/plain; charset=utf-8",
		Metadata: map[string]string{
			"owner-id":     strconv.FormatInt(to.OwnerID, 10),
			"operation-id": to.OperationID,
		},
	})
	return err
}
