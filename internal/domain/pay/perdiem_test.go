package pay

import (
	"testing"
	"time"

	"fieldpay/internal/domain/rates"
)

var (
	sunday    = time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	tuesday   = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	wednesday = time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
)

func TestStandardPerDiemSundayRule(t *testing.T) {
	if !StandardPerDiemApplies(sunday, nil) {
		t.Fatal("expected Sunday with no jobs to qualify")
	}
	if StandardPerDiemApplies(tuesday, nil) {
		t.Fatal("expected Tuesday with no jobs not to qualify")
	}
}

func TestStandardPerDiemNeedsBillableWork(t *testing.T) {
	dayOff := []JobRecord{{InstallDate: tuesday, InstallType: "DO"}, {InstallDate: tuesday, InstallType: "ND"}}
	if StandardPerDiemApplies(tuesday, dayOff) {
		t.Fatal("expected DO/ND jobs not to count as work")
	}
	worked := append(dayOff, JobRecord{InstallDate: tuesday, InstallType: "F001"})
	if !StandardPerDiemApplies(tuesday, worked) {
		t.Fatal("expected billable job to qualify the day")
	}
	otherDay := []JobRecord{{InstallDate: wednesday, InstallType: "F001"}}
	if StandardPerDiemApplies(tuesday, otherDay) {
		t.Fatal("expected a job from another day to be ignored")
	}
}

func TestStandardPerDiemAmount(t *testing.T) {
	table := rates.FromMap(map[string]float64{rates.KeyPerDiem: 50})
	assertAmount(t, "worked", StandardPerDiemAmount(tuesday, []JobRecord{{InstallType: "F001"}}, table), "50")
	assertAmount(t, "idle", StandardPerDiemAmount(tuesday, nil, table), "0")
}

func TestExtraPerDiemCountedOnce(t *testing.T) {
	table := rates.FromMap(map[string]float64{rates.KeyExtraPD: 25})
	jobs := []JobRecord{
		{InstallDate: tuesday, InstallType: "F001", ExtraPerDiem: true},
		{InstallDate: tuesday, InstallType: "F002", ExtraPerDiem: true},
	}
	log := &DailyLog{LogDate: tuesday, ExtraPerDiem: true}

	assertAmount(t, "both signals", ExtraPerDiemAmount(tuesday, jobs, log, table), "25")
	if src := ExtraPerDiemSource(tuesday, jobs, log); src != ExtraPDSourceJob {
		t.Fatalf("expected job signal first, got %q", src)
	}
	if src := ExtraPerDiemSource(tuesday, nil, log); src != ExtraPDSourceLog {
		t.Fatalf("expected log signal, got %q", src)
	}
	assertAmount(t, "no signal", ExtraPerDiemAmount(tuesday, nil, &DailyLog{LogDate: tuesday}, table), "0")
	assertAmount(t, "log for another day", ExtraPerDiemAmount(tuesday, nil, &DailyLog{LogDate: wednesday, ExtraPerDiem: true}, table), "0")
}
