package storage

import (
	"context"
	"testing"

	"github.com/andresuchdata/stockledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(0)

	require.NoError(t, s.PutObject(ctx, "reports/b.json", []byte(`{"b":1}`), "application/json"))
	require.NoError(t, s.PutObject(ctx, "reports/a.json", []byte(`{"a":1}`), "application/json"))
	require.NoError(t, s.PutObject(ctx, "other/c.txt", []byte("c"), "text/plain"))

	objs, err := s.ListObjects(ctx, "reports/")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "reports/a.json", objs[0].Key)
	assert.EqualValues(t, 7, objs[0].Size)

	data, err := s.GetObject(ctx, "reports/b.json")
	require.NoError(t, err)
	assert.Equal(t, `{"b":1}`, string(data))

	require.NoError(t, s.DeleteObject(ctx, "reports/b.json"))
	_, err = s.GetObject(ctx, "reports/b.json")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, s.DeleteObject(ctx, "missing"))
}

func TestMemoryStorage_Quota(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(10)

	require.NoError(t, s.PutObject(ctx, "a", []byte("12345678"), ""))
	assert.ErrorIs(t, s.PutObject(ctx, "b", []byte("123"), ""), ErrQuotaExceeded)

	// overwriting releases the previous payload
	require.NoError(t, s.PutObject(ctx, "a", []byte("1234567890"), ""))

	require.NoError(t, s.DeleteObject(ctx, "a"))
	require.NoError(t, s.PutObject(ctx, "b", []byte("123"), ""))
}

func TestNewMinIOClient_Validation(t *testing.T) {
	ctx := context.Background()
	_, err := NewMinIOClient(ctx, configWith("", "ak", "sk", "bucket"))
	assert.ErrorContains(t, err, "endpoint")
	_, err = NewMinIOClient(ctx, configWith("localhost:9000", "", "sk", "bucket"))
	assert.ErrorContains(t, err, "credentials")
	_, err = NewMinIOClient(ctx, configWith("localhost:9000", "ak", "sk", ""))
	assert.ErrorContains(t, err, "bucket")
}

func configWith(endpoint, access, secret, bucket string) config.StorageConfig {
	return config.StorageConfig{Enabled: true, Endpoint: endpoint, AccessKey: access, SecretKey: secret, Bucket: bucket}
}
