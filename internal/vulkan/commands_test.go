package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
)

func TestTransitionBarrier(t *testing.T) {
	barrier, err := transitionBarrier(core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal)
	require.NoError(t, err)
	assert.Equal(t, core1_0.AccessFlags(0), barrier.srcAccess)
	assert.Equal(t, core1_0.AccessTransferWrite, barrier.dstAccess)
	assert.Equal(t, core1_0.PipelineStageTopOfPipe, barrier.srcStage)
	assert.Equal(t, core1_0.PipelineStageTransfer, barrier.dstStage)

	barrier, err = transitionBarrier(core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal)
	require.NoError(t, err)
	assert.Equal(t, core1_0.AccessTransferWrite, barrier.srcAccess)
	assert.Equal(t, core1_0.AccessShaderRead, barrier.dstAccess)
	assert.Equal(t, core1_0.PipelineStageTransfer, barrier.srcStage)
	assert.Equal(t, core1_0.PipelineStageFragmentShader, barrier.dstStage)

	_, err = transitionBarrier(core1_0.ImageLayoutShaderReadOnlyOptimal, core1_0.ImageLayoutTransferDstOptimal)
	assert.Error(t, err)
}
