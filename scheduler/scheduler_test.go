package scheduler

import "testing"

func TestDailyRunTime(t *testing.T) {
	tests := []struct {
		runHour int
		want    string
		ok      bool
	}{
		{0, "00:00", true},
		{7, "07:00", true},
		{16, "16:00", true},
		{23, "23:00", true},
		{-1, "", false},
		{24, "", false},
	}
	for _, tt := range tests {
		got, ok := DailyRunTime(tt.runHour)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DailyRunTime(%d) = %q, %v; want %q, %v", tt.runHour, got, ok, tt.want, tt.ok)
		}
	}
}
