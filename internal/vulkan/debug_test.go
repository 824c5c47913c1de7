package vulkan

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
)

func TestDebugLevel(t *testing.T) {
	tests := []struct {
		severity ext_debug_utils.DebugUtilsMessageSeverityFlags
		want     slog.Level
	}{
		{ext_debug_utils.SeverityError, slog.LevelError},
		{ext_debug_utils.SeverityWarning, slog.LevelWarn},
		{ext_debug_utils.SeverityInfo, slog.LevelInfo},
		{ext_debug_utils.SeverityVerbose, slog.LevelDebug},
		{ext_debug_utils.SeverityWarning | ext_debug_utils.SeverityError, slog.LevelError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, debugLevel(tt.severity), "severity %s", tt.severity)
	}
}
