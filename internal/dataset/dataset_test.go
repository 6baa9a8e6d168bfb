package dataset

import (
	"strings"
	"testing"
	"time"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/testutil"
)

func TestLoad_Fixture(t *testing.T) {
	_, store := testutil.TestDataDir(t)

	snap, err := Load(store, DefaultFiles())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Skills.Skills) != 4 || len(snap.Employees) != 3 {
		t.Errorf("skills=%d employees=%d", len(snap.Skills.Skills), len(snap.Employees))
	}
	if len(snap.Goals()) != 2 || snap.Goals()[1].ID != "cap.data_warehouse" {
		t.Errorf("goals = %+v", snap.Goals())
	}
	if len(snap.Learning.Courses) != 3 || len(snap.Profiles) != 3 {
		t.Errorf("learning=%d profiles=%d", len(snap.Learning.Courses), len(snap.Profiles))
	}
	if got := snap.Mapping["skill.mlops"]; len(got) != 1 {
		t.Errorf("mapping = %v", snap.Mapping)
	}
	if len(snap.Checksums) != 6 {
		t.Errorf("checksums = %v", snap.Checksums)
	}
	if e, ok := snap.Employee("e2"); !ok || e.Name != "Bohdan Kral" {
		t.Errorf("Employee(e2) = %+v, %v", e, ok)
	}
}

func TestLoad_OptionalFilesMissing(t *testing.T) {
	_, store := testutil.EmptyDataDir(t)
	_ = store.Write("skills.json", []byte(`{"skills":[]}`))
	_ = store.Write("employees.json", []byte(`{"employees":[]}`))

	snap, err := Load(store, DefaultFiles())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Learning == nil || snap.Strategy == nil || snap.Mapping == nil {
		t.Fatal("optional inputs should default to empty values")
	}
	if len(snap.Goals()) != 0 || snap.StrategyText != "" {
		t.Errorf("goals = %v", snap.Goals())
	}
}

func TestLoad_RequiredFileMissing(t *testing.T) {
	_, store := testutil.EmptyDataDir(t)
	_ = store.Write("skills.json", []byte(`{"skills":[]}`))

	_, err := Load(store, DefaultFiles())
	if err == nil || !strings.Contains(err.Error(), "employees.json is missing") {
		t.Errorf("err = %v", err)
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	_, store := testutil.TestDataDir(t)
	_ = store.Write("learning.json", []byte("{not json"))

	if _, err := Load(store, DefaultFiles()); err == nil {
		t.Error("expected decode error")
	}
}

func TestDeadlineMonths_UsesStrategyAsOf(t *testing.T) {
	_, store := testutil.TestDataDir(t)
	snap, err := Load(store, DefaultFiles())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	got := snap.DeadlineMonths(snap.Goals()[1], now)
	// 2026-01-01 → 2026-06-30: 5 months and 29 days.
	want := 5 + 29.0/30
	if got != want {
		t.Errorf("deadline = %v, want %v", got, want)
	}
}
