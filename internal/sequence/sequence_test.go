package sequence

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIsUniqueUnderConcurrency(t *testing.T) {
	seq := NewMemory(0)
	const n = 50

	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{}, n)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := seq.Next(context.Background())
			assert.NoError(t, err)
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		assert.Contains(t, seen, i)
	}
}

type stubCounter struct {
	n      int
	err    error
	folder string
}

func (s *stubCounter) Count(ctx context.Context, folder string) (int, error) {
	s.folder = folder
	return s.n, s.err
}

func TestFolderCount(t *testing.T) {
	counter := &stubCounter{n: 4}
	id, err := FolderCount{Counter: counter}.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.Equal(t, "uploads", counter.folder)

	_, err = FolderCount{Counter: &stubCounter{err: errors.New("drive down")}}.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drive down")

	_, err = FolderCount{}.Next(context.Background())
	require.Error(t, err)
}

func TestClientOption(t *testing.T) {
	opt, err := clientOption("localhost:6379", "secret")
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:6379"}, opt.InitAddress)
	assert.Equal(t, "secret", opt.Password)

	opt, err = clientOption("redis://cache.internal:6380/0", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"cache.internal:6380"}, opt.InitAddress)

	_, err = clientOption("  ", "")
	require.Error(t, err)
}
