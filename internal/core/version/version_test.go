package version

import "testing"

func TestInfoDefaults(t *testing.T) {
	bi := Info("deskwatch-report")
	if bi.Service != "deskwatch-report" {
		t.Fatalf("service = %q", bi.Service)
	}
	if bi.Version == "" || bi.Commit == "" || bi.Date == "" {
		t.Fatalf("unset build fields should carry defaults: %+v", bi)
	}
}
