package vulkan

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/sorpv/sorpcube/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

func TestStatusFromResult(t *testing.T) {
	failure := errors.New("device lost")

	tests := []struct {
		name       string
		res        common.VkResult
		err        error
		wantStatus render.Status
		wantErr    bool
	}{
		{"success", core1_0.VKSuccess, nil, render.StatusOK, false},
		{"out of date", khr_swapchain.VKErrorOutOfDate, failure, render.StatusOutOfDate, false},
		{"suboptimal", khr_swapchain.VKSuboptimal, nil, render.StatusSuboptimal, false},
		{"failure", core1_0.VKErrorDeviceLost, failure, render.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := statusFromResult(tt.res, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantErr {
				assert.ErrorIs(t, err, failure)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
