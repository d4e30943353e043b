package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	assert.Equal(t, want, parseTime("2024-03-01T12:30:00Z"))
	assert.Equal(t, want, parseTime("2024-03-01T12:30:00"))
	assert.Equal(t, want, parseTime("2024-03-01 12:30:00"))
	assert.True(t, parseTime("unknown").IsZero())
	assert.True(t, parseTime("yesterday").IsZero())
}

func TestGetUsesLinkerValues(t *testing.T) {
	oldVersion, oldCommit, oldTime := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldVersion, oldCommit, oldTime })

	Version = "v1.4.0"
	GitCommit = "0123456789abcdef"
	BuildTime = "2024-03-01T12:30:00Z"

	info := Get()
	assert.Equal(t, "v1.4.0", info.Version)
	assert.Equal(t, "0123456789abcdef", info.GitCommit)
	assert.Equal(t, 2024, info.BuildTime.Year())
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
	assert.True(t, info.IsRelease())
	assert.Equal(t, "v1.4.0 (0123456)", info.Short())
}

func TestBuildInfoString(t *testing.T) {
	info := &BuildInfo{
		Version:   "dev-0123456",
		GitCommit: "0123456789",
		GoVersion: "go1.24.0",
		Platform:  "linux/amd64",
		Dirty:     true,
	}

	assert.False(t, info.IsRelease())
	assert.Equal(t, "dev-0123456", info.Short())
	assert.Equal(t, "Version: dev-0123456\nCommit: 0123456789 (dirty)\nGo: go1.24.0\nPlatform: linux/amd64", info.String())
}
