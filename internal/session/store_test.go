package session

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultRules(t *testing.T) {
	want := RuleSet{
		RuleRemoveDuplicates: true,
		RuleGroupUnits:       true,
		RuleValidateFormats:  true,
		RuleStandardizeNames: false,
		RuleRemoveOutliers:   false,
		RuleNormalizeData:    false,
	}
	if diff := cmp.Diff(want, DefaultRules()); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleRule_DoubleToggleIsIdentity(t *testing.T) {
	store := NewStore()
	defaults := store.Rules()

	// Any toggle sequence reduces to toggle-count parity per flag.
	for _, name := range RuleNames() {
		if err := store.ToggleRule(name); err != nil {
			t.Fatalf("ToggleRule(%s): %v", name, err)
		}
	}
	for _, name := range RuleNames() {
		if store.Rules()[name] == defaults[name] {
			t.Errorf("rule %s unchanged after one toggle", name)
		}
	}
	for _, name := range RuleNames() {
		if err := store.ToggleRule(name); err != nil {
			t.Fatalf("ToggleRule(%s): %v", name, err)
		}
	}
	if diff := cmp.Diff(defaults, store.Rules()); diff != "" {
		t.Errorf("double toggle is not identity (-want +got):\n%s", diff)
	}
}

func TestToggleRule_UnknownName(t *testing.T) {
	store := NewStore()
	if err := store.ToggleRule("fixEverything"); err == nil {
		t.Error("expected error for unknown rule name")
	}
}

func TestSelectMetric_SubMetricReset(t *testing.T) {
	store := NewStore()

	store.SelectMetric(MetricPEX)
	if got := store.Selection().SubMetric; got != SubMetricPEXBI {
		t.Errorf("PEX sub-metric = %q, want first sub-option %q", got, SubMetricPEXBI)
	}

	store.SelectSubMetric(SubMetricPEXVendor)
	if got := store.Selection().SubMetric; got != SubMetricPEXVendor {
		t.Errorf("sub-metric = %q after explicit select", got)
	}

	// Metrics without sub-options clear the sub-metric.
	store.SelectMetric(MetricSales)
	if got := store.Selection().SubMetric; got != "" {
		t.Errorf("sales sub-metric = %q, want empty", got)
	}
}

func TestSelectSubMetric_RejectsForeignValues(t *testing.T) {
	store := NewStore()
	store.SelectMetric(MetricWorkingCapital)
	store.SelectSubMetric("pex-vendor")
	if got := store.Selection().SubMetric; got != string(WCDso) {
		t.Errorf("foreign sub-metric accepted: %q", got)
	}
}

func TestWorkingCapitalKind_Derivation(t *testing.T) {
	cases := []struct {
		sub  string
		want WCKind
	}{
		{string(WCDso), WCDso},
		{string(WCOverhead), WCOverhead},
		{"", WCDso},
		{"pex-bi", WCDso},
	}
	for _, tc := range cases {
		sel := MetricSelection{Metric: MetricWorkingCapital, SubMetric: tc.sub}
		if got := sel.WorkingCapitalKind(); got != tc.want {
			t.Errorf("WorkingCapitalKind(sub=%q) = %s, want %s", tc.sub, got, tc.want)
		}
	}
}

func TestWorkingCapitalKind_TracksEverySubMetricChange(t *testing.T) {
	store := NewStore()
	store.SelectMetric(MetricWorkingCapital)

	for _, sub := range SubOptions(MetricWorkingCapital) {
		store.SelectSubMetric(sub)
		sel := store.Selection()
		if string(sel.WorkingCapitalKind()) != sel.SubMetric {
			t.Errorf("kind %s disagrees with sub-metric %s", sel.WorkingCapitalKind(), sel.SubMetric)
		}
	}
}

func TestBeginAndClearSession(t *testing.T) {
	store := NewStore()

	gen := store.BeginSession("abc-123", []FileRef{{Name: "q3.xlsx", Size: 1024, Status: FileUploaded}}, "")
	if !store.HasSession() {
		t.Fatal("session not active after BeginSession")
	}
	if !store.IsCurrent(gen) {
		t.Error("generation from BeginSession should be current")
	}

	store.SetVendorAnalysisType(VendorQTD)
	store.ClearSession()

	if store.HasSession() {
		t.Error("session still active after ClearSession")
	}
	if len(store.Files()) != 0 {
		t.Error("files survived ClearSession")
	}
	if store.IsCurrent(gen) {
		t.Error("old generation still current after ClearSession")
	}
	// Clearing keeps the vendor analysis preference.
	if got := store.VendorAnalysisType(); got != VendorQTD {
		t.Errorf("vendor analysis type reset to %s by ClearSession", got)
	}
}

func TestGeneration_InvalidatedByMetricChange(t *testing.T) {
	store := NewStore()
	gen := store.BeginSession("abc", nil, "")

	store.SelectMetric(MetricOE)
	if store.IsCurrent(gen) {
		t.Error("metric change should invalidate in-flight generation")
	}
}
