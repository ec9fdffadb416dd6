package compilecache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneiron-dev/helixql/compilecache"
	"github.com/oneiron-dev/helixql/internal/analyzer"
	"github.com/oneiron-dev/helixql/internal/diag"
)

func TestKeyIsStableForSameContent(t *testing.T) {
	a := compilecache.Key([]byte("QUERY Foo() => RETURN 1"))
	b := compilecache.Key([]byte("QUERY Foo() => RETURN 1"))
	c := compilecache.Key([]byte("QUERY Foo() => RETURN 2"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestEncodeDecodeRoundTrips(t *testing.T) {
	entry := compilecache.Entry{
		Diagnostics: []diag.Diagnostic{diag.New("E106", diag.Loc{File: "t.hx"}, "boom")},
		Queries:     []*analyzer.Query{{ModelName: "User", IsMutating: true}},
	}
	encoded, err := compilecache.Encode(entry)
	require.NoError(t, err)

	decoded, err := compilecache.Decode(encoded)
	require.NoError(t, err)
	require.Len(t, decoded.Diagnostics, 1)
	assert.Equal(t, diag.Code("E106"), decoded.Diagnostics[0].Code)
	require.Len(t, decoded.Queries, 1)
	assert.Equal(t, "User", decoded.Queries[0].ModelName)
	assert.True(t, decoded.Queries[0].IsMutating)
}

func TestMapCacheGetSetDeleteExpiry(t *testing.T) {
	ctx := context.Background()
	c := compilecache.NewMapCache()

	v, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	v, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	v, err = c.Get(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, c.Delete(ctx, "a"))
	v, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMapCacheDeletePrefixAndClear(t *testing.T) {
	ctx := context.Background()
	c := compilecache.NewMapCache()
	require.NoError(t, c.Set(ctx, "q:1", []byte("x"), 0))
	require.NoError(t, c.Set(ctx, "q:2", []byte("y"), 0))
	require.NoError(t, c.Set(ctx, "other", []byte("z"), 0))

	require.NoError(t, c.DeletePrefix(ctx, "q:"))
	v, _ := c.Get(ctx, "q:1")
	assert.Nil(t, v)
	v, _ = c.Get(ctx, "other")
	assert.Equal(t, []byte("z"), v)

	require.NoError(t, c.Clear(ctx))
	v, _ = c.Get(ctx, "other")
	assert.Nil(t, v)
}
