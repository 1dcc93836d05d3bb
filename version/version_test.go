package version

import (
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetWithLdflags(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0"
	GitCommit = "abc1234def"
	BuildTime = "2024-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.0.0" {
		t.Errorf("expected '1.0.0', got %q", info.Version)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected commit truncated to 'abc1234', got %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2024 {
		t.Errorf("expected build year 2024, got %d", info.BuildDate.Year())
	}
	if info.GoVersion == "" {
		t.Error("expected the Go version from build info")
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"version only", Info{Version: "dev"}, "dev"},
		{"with commit", Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{"dirty", Info{Version: "1.0.0", GitCommit: "abc1234", IsDirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	defer saveAndRestore()()
	Version = "2.0.0"
	GitCommit = "fedcba9"

	if got := Resolve("3.1.4"); got != "3.1.4" {
		t.Errorf("expected configured version, got %q", got)
	}
	if got := Resolve(""); got != "2.0.0-fedcba9" && got != "2.0.0-fedcba9-dirty" {
		t.Errorf("expected build version, got %q", got)
	}
}
