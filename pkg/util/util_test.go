package util

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTypeMeta_Validate(t *testing.T) {
	tt := map[string]struct {
		meta      TypeMeta
		expectErr bool
	}{
		"empty is valid":        {meta: TypeMeta{}},
		"matching kind":         {meta: TypeMeta{APIVersion: APIVersionV1Alpha1, Kind: "Config"}},
		"wrong kind":            {meta: TypeMeta{Kind: "Agent"}, expectErr: true},
		"unknown version":       {meta: TypeMeta{APIVersion: "lensmark/v9", Kind: "Config"}, expectErr: true},
		"unknown version, kind": {meta: TypeMeta{APIVersion: "x/v1", Kind: "Other"}, expectErr: true},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			err := tc.meta.Validate("Config")
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTypeMeta_GetAPIVersion(t *testing.T) {
	assert.Equal(t, APIVersionV1Alpha1, (&TypeMeta{}).GetAPIVersion())
	assert.Equal(t, "other", (&TypeMeta{APIVersion: "other"}).GetAPIVersion())
}

func TestIsVerbose(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsVerbose(ctx))
	assert.True(t, IsVerbose(WithVerbose(ctx, true)))
	assert.False(t, IsVerbose(WithVerbose(ctx, false)))
}

func TestLogger(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, Logger(ctx))

	l := zap.NewExample()
	assert.Same(t, l, Logger(WithLogger(ctx, l)))
}
