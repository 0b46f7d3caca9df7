package redis

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"testing"

	"github.com/ganot/studyvault/internal/repository"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakeServer answers commands from a map without touching the network.
type fakeServer struct {
	mu   sync.Mutex
	data map[string]string
	keys []string
}

func (f *fakeServer) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, fmt.Errorf("dial %s: not allowed in tests", addr)
	}
}

func (f *fakeServer) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}

func (f *fakeServer) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		f.mu.Lock()
		defer f.mu.Unlock()

		args := cmd.Args()
		if len(args) > 1 {
			f.keys = append(f.keys, fmt.Sprint(args[1]))
		}
		switch c := cmd.(type) {
		case *goredis.StatusCmd:
			switch cmd.Name() {
			case "ping":
				c.SetVal("PONG")
			case "set":
				f.data[fmt.Sprint(args[1])] = asString(args[2])
				c.SetVal("OK")
			}
		case *goredis.StringCmd:
			value, ok := f.data[fmt.Sprint(args[1])]
			if !ok {
				return goredis.Nil
			}
			c.SetVal(value)
		case *goredis.IntCmd:
			key := fmt.Sprint(args[1])
			if _, ok := f.data[key]; ok {
				delete(f.data, key)
				c.SetVal(1)
			} else {
				c.SetVal(0)
			}
		}
		return nil
	}
}

func asString(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}

func newFakeStore(t *testing.T) (*KVStore, *fakeServer) {
	t.Helper()
	fake := &fakeServer{data: make(map[string]string)}
	client := goredis.NewClient(&goredis.Options{Addr: "fake:6379"})
	client.AddHook(fake)
	t.Cleanup(func() { _ = client.Close() })
	return NewWithClient(client, defaultPrefix), fake
}

func TestKVStoreRoundTrip(t *testing.T) {
	store, fake := newFakeStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	_, err := store.Load(ctx, "project-storage")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, store.Save(ctx, "project-storage", []byte(`{"projects":[],"version":1}`)))
	value, err := store.Load(ctx, "project-storage")
	require.NoError(t, err)
	require.JSONEq(t, `{"projects":[],"version":1}`, string(value))

	require.NoError(t, store.Delete(ctx, "project-storage"))
	require.ErrorIs(t, store.Delete(ctx, "project-storage"), repository.ErrNotFound)

	for _, key := range fake.keys {
		require.Equal(t, "studyvault:project-storage", key)
	}
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, "http://localhost:6379")
	require.ErrorContains(t, err, "parse redis url")

	_, err = Open(ctx, "redis://127.0.0.1:1/0?dial_timeout=100ms&max_retries=-1")
	require.ErrorContains(t, err, "ping redis")
}

func TestKVStoreLive(t *testing.T) {
	url := os.Getenv("STUDYVAULT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("STUDYVAULT_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	store, err := Open(ctx, url)
	require.NoError(t, err)
	defer store.Close()

	key := "live-" + t.Name()
	require.NoError(t, store.Save(ctx, key, []byte("v1")))
	value, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "v1", string(value))
	require.NoError(t, store.Delete(ctx, key))
}
