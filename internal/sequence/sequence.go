// Package sequence issues submission ids for uploaded resumes.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/valkey-io/valkey-go"

	"resume-optimizer/internal/shared/storage/object"
)

// DefaultKey is the Valkey key holding the submission counter.
const DefaultKey = "resume-optimizer:submission_seq"

// Sequencer hands out increasing submission ids starting at 1.
type Sequencer interface {
	Next(ctx context.Context) (int64, error)
}

// Memory is a process-local counter.
type Memory struct {
	n atomic.Int64
}

// NewMemory returns a counter whose first id is start+1.
func NewMemory(start int64) *Memory {
	m := &Memory{}
	m.n.Store(start)
	return m
}

func (m *Memory) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return m.n.Add(1), nil
}

// FolderCount derives the next id from the number of archived uploads.
// Two concurrent uploads can observe the same count and share an id.
type FolderCount struct {
	Counter object.Counter
	Folder  string
}

func (f FolderCount) Next(ctx context.Context) (int64, error) {
	if f.Counter == nil {
		return 0, errors.New("sequence: folder counter not configured")
	}
	folder := f.Folder
	if folder == "" {
		folder = object.FolderUploads
	}
	n, err := f.Counter.Count(ctx, folder)
	if err != nil {
		return 0, fmt.Errorf("sequence: count %s: %w", folder, err)
	}
	return int64(n) + 1, nil
}

// Valkey uses an atomic INCR so ids stay unique across instances.
type Valkey struct {
	client valkey.Client
	key    string
}

// NewValkey connects to addr (host:port or a redis:// URL) and verifies it with PING.
func NewValkey(ctx context.Context, addr, password, key string) (*Valkey, error) {
	opt, err := clientOption(addr, password)
	if err != nil {
		return nil, err
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("sequence: valkey connect: %w", err)
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("sequence: valkey ping: %w", err)
	}
	if key == "" {
		key = DefaultKey
	}
	return &Valkey{client: client, key: key}, nil
}

func (v *Valkey) Next(ctx context.Context) (int64, error) {
	n, err := v.client.Do(ctx, v.client.B().Incr().Key(v.key).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("sequence: valkey incr %s: %w", v.key, err)
	}
	return n, nil
}

// Close releases the underlying connection.
func (v *Valkey) Close() {
	v.client.Close()
}

func clientOption(addr, password string) (valkey.ClientOption, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return valkey.ClientOption{}, errors.New("sequence: valkey address is required")
	}
	if strings.Contains(addr, "://") {
		opt, err := valkey.ParseURL(addr)
		if err != nil {
			return valkey.ClientOption{}, fmt.Errorf("sequence: parse valkey url: %w", err)
		}
		if password != "" {
			opt.Password = password
		}
		return opt, nil
	}
	return valkey.ClientOption{InitAddress: []string{addr}, Password: password}, nil
}
