package devices

import "testing"

func TestClassifyLowBatteryFlagsManualQC(t *testing.T) {
	got := Classify(75, 1)
	if got.Status != StatusManualQC {
		t.Fatalf("expected %s, got %s", StatusManualQC, got.Status)
	}
	if !got.ManualQCFlag {
		t.Fatalf("expected manual qc flag set")
	}
}

func TestClassifyHealthyDeviceAutoPasses(t *testing.T) {
	got := Classify(85, 2)
	if got.Status != StatusAutoPass {
		t.Fatalf("expected %s, got %s", StatusAutoPass, got.Status)
	}
	if got.ManualQCFlag {
		t.Fatalf("expected manual qc flag clear")
	}
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		battery int
		fails   int
		want    DeviceStatus
	}{
		{"battery at threshold", 80, 0, StatusAutoPass},
		{"battery below threshold", 79, 0, StatusManualQC},
		{"fails at threshold", 100, 3, StatusManualQC},
		{"fails below threshold", 100, 2, StatusAutoPass},
		{"both at limit", 80, 2, StatusAutoPass},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.battery, tc.fails)
			if got.Status != tc.want {
				t.Fatalf("battery=%d fails=%d: expected %s, got %s", tc.battery, tc.fails, tc.want, got.Status)
			}
			if got.ManualQCFlag != (tc.want == StatusManualQC) {
				t.Fatalf("battery=%d fails=%d: flag disagrees with status", tc.battery, tc.fails)
			}
		})
	}
}

func TestClassifyTotalAndDeterministic(t *testing.T) {
	for battery := 0; battery <= 100; battery += 5 {
		for fails := 0; fails <= 6; fails++ {
			first := Classify(battery, fails)
			second := Classify(battery, fails)
			if first != second {
				t.Fatalf("battery=%d fails=%d: classification not deterministic", battery, fails)
			}
			flagged := battery < 80 || fails >= 3
			if flagged != (first.Status == StatusManualQC) {
				t.Fatalf("battery=%d fails=%d: expected flagged=%v, got status %s", battery, fails, flagged, first.Status)
			}
		}
	}
}
