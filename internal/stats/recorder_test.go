package stats

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRecorder_CountsOutcomes(t *testing.T) {
	r := NewRecorder(5, false)

	r.RecordResult("id1", true, 0, 100*time.Millisecond, false, 200, true)
	r.RecordResult("id2", true, 0, 150*time.Millisecond, false, 200, true)
	r.RecordResult("id3", false, 1, 50*time.Millisecond, false, 404, true)
	r.RecordResult("id4", false, -1, 0, true, 0, false)

	snap := r.GetSnapshot()

	if snap.Processed != 4 {
		t.Errorf("Processed = %d, want 4", snap.Processed)
	}
	if snap.Success != 2 || snap.Failure != 2 {
		t.Errorf("Success/Failure = %d/%d, want 2/2", snap.Success, snap.Failure)
	}
	if snap.Timeouts != 1 {
		t.Errorf("Timeouts = %d, want 1", snap.Timeouts)
	}
	if snap.Infra != 1 {
		t.Errorf("Infra = %d, want 1", snap.Infra)
	}
	if snap.HTTPStatuses[200] != 2 || snap.HTTPStatuses[404] != 1 {
		t.Errorf("HTTPStatuses = %v, want 200:2 404:1", snap.HTTPStatuses)
	}
}

func TestRecorder_DryRun(t *testing.T) {
	r := NewRecorder(3, true)

	for i := 0; i < 3; i++ {
		r.RecordDryRun()
	}

	snap := r.GetSnapshot()

	if !snap.DryRun {
		t.Error("DryRun should be true")
	}
	if snap.Processed != 3 || snap.Success != 3 || snap.Failure != 0 {
		t.Errorf("snapshot = %+v, want 3 processed, all success", snap)
	}
}

func TestRecorder_Abort(t *testing.T) {
	r := NewRecorder(5, false)

	r.RecordResult("id1", true, 0, time.Millisecond, false, 200, true)
	r.RecordResult("id2", false, 0, time.Millisecond, false, 500, true)
	r.RecordAbort("id2", 500)

	snap := r.GetSnapshot()

	if !snap.Aborted || snap.AbortID != "id2" || snap.AbortCode != 500 {
		t.Errorf("abort = (%v, %q, %d), want (true, id2, 500)", snap.Aborted, snap.AbortID, snap.AbortCode)
	}
}

func TestRecorder_RecentFailuresBounded(t *testing.T) {
	r := NewRecorder(20, false)

	for i := 0; i < 10; i++ {
		r.RecordResult(fmt.Sprintf("id%d", i), false, 1, time.Millisecond, false, 0, false)
	}

	snap := r.GetSnapshot()

	if len(snap.RecentFailures) != RecentFailureRingSize {
		t.Fatalf("RecentFailures len = %d, want %d", len(snap.RecentFailures), RecentFailureRingSize)
	}
	// Oldest entries evicted first
	if snap.RecentFailures[0].ID != "id5" {
		t.Errorf("oldest kept failure = %q, want id5", snap.RecentFailures[0].ID)
	}
	if snap.RecentFailures[4].ID != "id9" {
		t.Errorf("newest failure = %q, want id9", snap.RecentFailures[4].ID)
	}
}

func TestRecorder_DurationPercentiles(t *testing.T) {
	r := NewRecorder(100, false)

	for i := 1; i <= 100; i++ {
		r.RecordResult(fmt.Sprintf("id%d", i), true, 0, time.Duration(i)*time.Millisecond, false, 0, false)
	}

	snap := r.GetSnapshot()

	if snap.DurationP50 < 40*time.Millisecond || snap.DurationP50 > 60*time.Millisecond {
		t.Errorf("P50 = %v, want ~50ms", snap.DurationP50)
	}
	if snap.DurationP95 < 85*time.Millisecond || snap.DurationP95 > 100*time.Millisecond {
		t.Errorf("P95 = %v, want ~95ms", snap.DurationP95)
	}
	if snap.DurationP99 < snap.DurationP95 {
		t.Errorf("P99 (%v) < P95 (%v)", snap.DurationP99, snap.DurationP95)
	}
}

func TestRecorder_CurrentID(t *testing.T) {
	r := NewRecorder(2, false)

	r.RecordStart("id1")

	if snap := r.GetSnapshot(); snap.CurrentID != "id1" {
		t.Errorf("CurrentID = %q, want id1", snap.CurrentID)
	}
}

func TestRecorder_ConcurrentAccess(t *testing.T) {
	r := NewRecorder(100, false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			r.RecordResult(fmt.Sprintf("id%d", n), true, 0, time.Millisecond, false, 200, true)
		}(i)
		go func() {
			defer wg.Done()
			_ = r.GetSnapshot()
		}()
	}
	wg.Wait()

	if snap := r.GetSnapshot(); snap.Processed != 10 {
		t.Errorf("Processed = %d, want 10", snap.Processed)
	}
}

func TestFormatExitSummary(t *testing.T) {
	r := NewRecorder(5, false)
	r.RecordResult("id1", true, 0, 100*time.Millisecond, false, 200, true)
	r.RecordResult("id2", false, 0, 120*time.Millisecond, false, 500, true)
	r.RecordAbort("id2", 500)

	out := FormatExitSummary(r.GetSnapshot(), SummaryConfig{
		Duration:    90 * time.Second,
		Delay:       time.Second,
		MetricsAddr: "0.0.0.0:17092",
	})

	for _, want := range []string{
		"Run Summary",
		"00:01:30",
		"Processed:            2",
		"Successful:           1",
		"Failed:               1",
		"HTTP 200",
		"HTTP 500",
		"Halted on identifier: id2 (HTTP 500)",
		"Not processed:        3",
		"http://0.0.0.0:17092/metrics",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\n%s", want, out)
		}
	}
}

func TestFormatExitSummary_DryRun(t *testing.T) {
	r := NewRecorder(3, true)
	r.RecordDryRun()
	r.RecordDryRun()
	r.RecordDryRun()

	out := FormatExitSummary(r.GetSnapshot(), SummaryConfig{Duration: 2 * time.Second, Delay: time.Second})

	if !strings.Contains(out, "DRY RUN") {
		t.Error("summary should flag dry-run mode")
	}
	if strings.Contains(out, "Command Duration") {
		t.Error("dry-run summary should omit duration percentiles")
	}
}

func TestFormatHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"duration", FormatDuration(3*time.Hour + 25*time.Minute + 45*time.Second), "03:25:45"},
		{"number_small", FormatNumber(999), "999"},
		{"number_thousands", FormatNumber(1500), "1.5K"},
		{"number_millions", FormatNumber(2_500_000), "2.5M"},
		{"ms", FormatMs(1500 * time.Millisecond), "1500 ms"},
		{"us", FormatMs(500 * time.Microsecond), "500 µs"},
		{"rate_high", FormatRate(1500), "1.5K/s"},
		{"rate_mid", FormatRate(12.3), "12.3/s"},
		{"rate_low", FormatRate(0.5), "0.50/s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
