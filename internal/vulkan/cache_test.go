package vulkan

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeCacheHeader(t *testing.T, header cacheHeader, payload int) []byte {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, header))
	buf.Write(make([]byte, payload))
	return buf.Bytes()
}

func TestCacheHeaderSize(t *testing.T) {
	assert.Equal(t, 32, cacheHeaderSize)
}

func TestValidateCacheHeader(t *testing.T) {
	identity := cacheIdentity{
		vendorID: 0x10de,
		deviceID: 0x2484,
		uuid:     uuid.MustParse("4f1c2e3a-9b7d-4c5e-8a6f-0d1e2f3a4b5c"),
	}
	valid := cacheHeader{
		Length:   uint32(cacheHeaderSize),
		Version:  cacheHeaderVersionOne,
		VendorID: identity.vendorID,
		DeviceID: identity.deviceID,
		UUID:     identity.uuid,
	}

	require.NoError(t, validateCacheHeader(encodeCacheHeader(t, valid, 64), identity))

	tests := []struct {
		name   string
		mutate func(h *cacheHeader)
	}{
		{"short length", func(h *cacheHeader) { h.Length = 16 }},
		{"version", func(h *cacheHeader) { h.Version = 2 }},
		{"vendor", func(h *cacheHeader) { h.VendorID = 0x1002 }},
		{"device", func(h *cacheHeader) { h.DeviceID = 0x73bf }},
		{"uuid", func(h *cacheHeader) { h.UUID = uuid.Nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := valid
			tt.mutate(&header)
			assert.Error(t, validateCacheHeader(encodeCacheHeader(t, header, 0), identity))
		})
	}

	t.Run("truncated", func(t *testing.T) {
		data := encodeCacheHeader(t, valid, 0)
		assert.Error(t, validateCacheHeader(data[:20], identity))
	})
}
