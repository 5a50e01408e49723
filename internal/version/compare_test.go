package version_test

import (
	"testing"

	"github.com/sinly-lab/sinly-quant/internal/version"
	"github.com/sinly-lab/sinly-quant/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCheckApiCompatibility(t *testing.T) {
	tests := []struct {
		name     string
		engine   string
		strategy string
		wantCode errors.ErrorCode
	}{
		{name: "exact match", engine: "1.0.0", strategy: "1.0.0"},
		{name: "patch differs", engine: "1.2.0", strategy: "1.2.5"},
		{name: "v prefix tolerated", engine: "v1.0.0", strategy: "1.0.3"},
		{name: "dev build skips check", engine: "main", strategy: "9.9.9"},
		{name: "strategy dev build skips check", engine: "1.0.0", strategy: "main"},
		{name: "major mismatch", engine: "2.0.0", strategy: "1.0.0", wantCode: errors.ErrCodeVersionMismatch},
		{name: "minor mismatch", engine: "1.1.0", strategy: "1.2.0", wantCode: errors.ErrCodeVersionMismatch},
		{name: "garbage version", engine: "1.0.0", strategy: "not-a-version", wantCode: errors.ErrCodeInvalidVersion},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := version.CheckApiCompatibility(tc.engine, tc.strategy)

			if tc.wantCode == 0 {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.HasCode(err, tc.wantCode))
			}
		})
	}
}

func TestCurrentVersionsAreCompatible(t *testing.T) {
	assert.NoError(t, version.CheckApiCompatibility(version.StrategyApiVersion, version.StrategyApiVersion))
}
