package buildinfo

import (
	"strings"
	"testing"
)

func TestCurrent(t *testing.T) {
	old := Version
	Version = "v0.3.0"
	defer func() { Version = old }()

	if got := Current(); got.Version != "v0.3.0" || got.Commit != Commit || got.Date != Date {
		t.Errorf("Current() = %+v", got)
	}
	if tmpl := Template(); !strings.Contains(tmpl, "{{.Name}} v0.3.0") {
		t.Errorf("Template() = %q", tmpl)
	}
}
