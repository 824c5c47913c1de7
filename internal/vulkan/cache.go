package vulkan

import (
	"bytes"
	"encoding/binary"
	"io/fs"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sorpv/sorpcube/internal/render"
	"github.com/vkngwrapper/core/v3/core1_0"
)

const cacheHeaderVersionOne = 1

// cacheHeader is the prefix every Vulkan pipeline cache blob starts with,
// stored least significant byte first.
type cacheHeader struct {
	Length   uint32
	Version  uint32
	VendorID uint32
	DeviceID uint32
	UUID     uuid.UUID
}

var cacheHeaderSize = binary.Size(cacheHeader{})

type cacheIdentity struct {
	vendorID uint32
	deviceID uint32
	uuid     uuid.UUID
}

// validateCacheHeader reports why data cannot seed a cache on the device
// described by want.
func validateCacheHeader(data []byte, want cacheIdentity) error {
	var header cacheHeader
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header)
	if err != nil {
		return errors.Wrap(err, "read pipeline cache header")
	}

	switch {
	case int(header.Length) < cacheHeaderSize:
		return errors.Newf("bad header length %d", header.Length)
	case header.Version != cacheHeaderVersionOne:
		return errors.Newf("unsupported header version %d", header.Version)
	case header.VendorID != want.vendorID:
		return errors.Newf("vendor id %#x, device has %#x", header.VendorID, want.vendorID)
	case header.DeviceID != want.deviceID:
		return errors.Newf("device id %#x, device has %#x", header.DeviceID, want.deviceID)
	case header.UUID != want.uuid:
		return errors.Newf("cache uuid %s, device has %s", header.UUID, want.uuid)
	}

	return nil
}

// PipelineCache is a driver pipeline cache persisted to a file between runs.
type PipelineCache struct {
	driver core1_0.CoreDeviceDriver
	handle core1_0.PipelineCache
	path   string
}

// OpenPipelineCache seeds a pipeline cache from path. A missing file, or
// one written by another device or driver, yields an empty cache. An empty
// path disables persistence.
func (c *DeviceContext) OpenPipelineCache(path string) (*PipelineCache, error) {
	log := render.Logger()
	var data []byte

	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			data = nil
		case err != nil:
			log.Warn("ignoring unreadable pipeline cache", "path", path, "error", err)
			data = nil
		default:
			err = validateCacheHeader(data, cacheIdentity{
				vendorID: c.properties.VendorID,
				deviceID: c.properties.DeviceID,
				uuid:     c.properties.PipelineCacheUUID,
			})
			if err != nil {
				log.Info("discarding stale pipeline cache", "path", path, "reason", err)
				data = nil
				_ = os.Remove(path)
			}
		}
	}

	handle, _, err := c.deviceDriver.CreatePipelineCache(nil, core1_0.PipelineCacheCreateInfo{
		InitialData: data,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create pipeline cache")
	}

	log.Debug("pipeline cache opened", "path", path, "seedBytes", len(data))
	return &PipelineCache{driver: c.deviceDriver, handle: handle, path: path}, nil
}

func (p *PipelineCache) Handle() *core1_0.PipelineCache {
	return &p.handle
}

// Save writes the cache contents back to its file.
func (p *PipelineCache) Save() error {
	if p.path == "" {
		return nil
	}

	data, _, err := p.driver.GetPipelineCacheData(p.handle)
	if err != nil {
		return errors.Wrap(err, "get pipeline cache data")
	}

	err = os.WriteFile(p.path, data, 0o644)
	if err != nil {
		return errors.Wrap(err, "write pipeline cache")
	}

	render.Logger().Debug("pipeline cache saved", "path", p.path, "bytes", len(data))
	return nil
}

func (p *PipelineCache) Destroy() {
	if p.handle.Initialized() {
		p.driver.DestroyPipelineCache(p.handle, nil)
		p.handle = core1_0.PipelineCache{}
	}
}
