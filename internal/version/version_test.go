package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	// Verify all fields are present
	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.Commit == "" {
		t.Error("Commit should not be empty")
	}
	if info.BuildTime == "" {
		t.Error("BuildTime should not be empty")
	}
	if info.GoVersion == "" {
		t.Error("GoVersion should not be empty")
	}

	// Verify GoVersion matches runtime
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestString(t *testing.T) {
	info := Get()
	s := info.String()

	if !strings.Contains(s, info.Version) {
		t.Errorf("String() = %q, should contain version %q", s, info.Version)
	}
	if !strings.Contains(s, info.Commit) {
		t.Errorf("String() = %q, should contain commit %q", s, info.Commit)
	}
	if !strings.Contains(s, info.GoVersion) {
		t.Errorf("String() = %q, should contain go version %q", s, info.GoVersion)
	}
}
