package postgres

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_EncodeThreshold(t *testing.T) {
	s, err := NewAuditService(nil)
	require.NoError(t, err)

	small := []byte(`{"delta":500}`)
	plain, compressed, algo := s.encode(small)
	assert.Equal(t, CompressionNone, algo)
	assert.Equal(t, small, plain)
	assert.Nil(t, compressed)

	large := bytes.Repeat([]byte(`{"offerId":"x","quantity":1},`), 1000)
	plain, compressed, algo = s.encode(large)
	assert.Equal(t, CompressionZstd, algo)
	assert.Nil(t, plain)
	assert.Less(t, len(compressed), len(large))

	restored, err := s.decode(plain, compressed, algo)
	require.NoError(t, err)
	assert.Equal(t, large, restored)

	plain, compressed, algo = s.encode(nil)
	assert.Nil(t, plain)
	assert.Nil(t, compressed)
	assert.Equal(t, CompressionNone, algo)
}
