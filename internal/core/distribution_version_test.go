package core

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDistributionVersion(t *testing.T) {
	tests := []struct {
		name     string
		release  string
		explicit string
		manifest string
		expected string
	}{
		{name: "release wins", release: "2.0.0", explicit: "1.5.0", manifest: "1.0.0", expected: "2.0.0"},
		{name: "explicit pep440", explicit: "1.5.0", manifest: "1.0.0", expected: "1.5.0"},
		{name: "branch ref ignored", explicit: "feature/foo", manifest: "1.0.0", expected: "1.0.0"},
		{name: "manifest", manifest: "1.0.0", expected: "1.0.0"},
		{name: "default", expected: DefaultDistributionVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDistributionVersion(tt.release, tt.explicit, tt.manifest)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIsPEP440(t *testing.T) {
	assert.True(t, IsPEP440("1.2.3"))
	assert.True(t, IsPEP440("1.2.3rc1"))
	assert.False(t, IsPEP440("noetic-devel"))
}

func TestValidateReleaseVersion(t *testing.T) {
	require.NoError(t, ValidateReleaseVersion(""))
	require.NoError(t, ValidateReleaseVersion("1.0.0.post1"))

	err := ValidateReleaseVersion("not a version")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
