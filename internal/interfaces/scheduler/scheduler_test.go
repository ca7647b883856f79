package scheduler

import (
	"testing"
	"time"
)

func TestParseScheduleTime(t *testing.T) {
	tests := []struct {
		input   string
		want    ScheduleTime
		wantErr bool
	}{
		{"09:00", ScheduleTime{Hour: 9, Minute: 0}, false},
		{"23:59", ScheduleTime{Hour: 23, Minute: 59}, false},
		{"0:5", ScheduleTime{Hour: 0, Minute: 5}, false},
		{"24:00", ScheduleTime{}, true},
		{"12:60", ScheduleTime{}, true},
		{"noon", ScheduleTime{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseScheduleTime(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseScheduleTime(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseScheduleTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestScheduler_ShouldRun(t *testing.T) {
	s := &Scheduler{
		scheduleTimes: []ScheduleTime{{Hour: 9, Minute: 0}, {Hour: 20, Minute: 0}},
	}

	nine := time.Date(2024, 3, 5, 9, 0, 30, 0, time.UTC)
	if !s.shouldRun(nine) {
		t.Error("expected shouldRun true at 09:00")
	}
	// Same minute must not fire twice
	if s.shouldRun(nine.Add(10 * time.Second)) {
		t.Error("expected shouldRun false for a repeated minute")
	}

	if s.shouldRun(time.Date(2024, 3, 5, 9, 1, 0, 0, time.UTC)) {
		t.Error("expected shouldRun false at 09:01")
	}
	if !s.shouldRun(time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC)) {
		t.Error("expected shouldRun true at 20:00")
	}
	// Next day fires again
	if !s.shouldRun(time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)) {
		t.Error("expected shouldRun true at 09:00 the following day")
	}
}
