package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tt := map[string]struct {
		level     string
		verbose   bool
		enabled   zapcore.Level
		disabled  zapcore.Level
		expectErr bool
	}{
		"default is warn": {enabled: zapcore.WarnLevel, disabled: zapcore.InfoLevel},
		"explicit info":   {level: "info", enabled: zapcore.InfoLevel, disabled: zapcore.DebugLevel},
		"verbose wins":    {level: "error", verbose: true, enabled: zapcore.DebugLevel, disabled: zapcore.DebugLevel - 1},
		"invalid level":   {level: "loud", expectErr: true},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			logger, err := New(tc.level, tc.verbose)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tc.enabled))
			assert.False(t, logger.Core().Enabled(tc.disabled))
		})
	}
}
