package medications

import "testing"

func TestTimeKey_Ordering(t *testing.T) {
	cases := []struct {
		hour, minute int
		m            Meridiem
		want         int
	}{
		{12, 0, AM, 0},
		{8, 0, AM, 480},
		{12, 0, PM, 720},
		{11, 30, PM, 1410},
		{1, 15, PM, 795},
	}
	for _, tc := range cases {
		if got := TimeKey(tc.hour, tc.minute, tc.m); got != tc.want {
			t.Fatalf("TimeKey(%d, %d, %s) = %d, want %d", tc.hour, tc.minute, tc.m, got, tc.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	h, m, mer, err := ParseClock(" 8:30 pm ")
	if err != nil {
		t.Fatalf("ParseClock error: %v", err)
	}
	if h != 8 || m != 30 || mer != PM {
		t.Fatalf("unexpected clock %d:%d %s", h, m, mer)
	}
	if got := FormatClock(h, m, mer); got != "08:30 PM" {
		t.Fatalf("FormatClock = %q", got)
	}

	for _, bad := range []string{"", "13:00 AM", "0:30 PM", "8:75 AM", "8:30", "noon"} {
		if _, _, _, err := ParseClock(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestValidClock_QuarterHours(t *testing.T) {
	if !ValidClock(12, 45, AM) {
		t.Fatalf("12:45 AM should be valid")
	}
	if ValidClock(8, 10, AM) {
		t.Fatalf("minute 10 should be rejected")
	}
	if ValidClock(0, 0, AM) || ValidClock(13, 0, PM) {
		t.Fatalf("hour out of range should be rejected")
	}
	if ValidClock(8, 0, "XM") {
		t.Fatalf("unknown meridiem should be rejected")
	}
}
