package repository

import (
	"testing"
	"time"
)

func TestWindowsOverlap(t *testing.T) {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		aStart time.Time
		aMin   uint32
		bStart time.Time
		bMin   uint32
		want   bool
	}{
		{
			name:   "identical windows",
			aStart: base, aMin: 120,
			bStart: base, bMin: 120,
			want: true,
		},
		{
			name:   "back to back sharing an instant",
			aStart: base, aMin: 120,
			bStart: base.Add(120 * time.Minute), bMin: 90,
			want: false,
		},
		{
			name:   "back to back reversed",
			aStart: base.Add(120 * time.Minute), aMin: 90,
			bStart: base, bMin: 120,
			want: false,
		},
		{
			name:   "one minute into the tail",
			aStart: base, aMin: 120,
			bStart: base.Add(119 * time.Minute), bMin: 90,
			want: true,
		},
		{
			name:   "shorter window fully contained",
			aStart: base, aMin: 180,
			bStart: base.Add(30 * time.Minute), bMin: 60,
			want: true,
		},
		{
			name:   "containment reversed",
			aStart: base.Add(30 * time.Minute), aMin: 60,
			bStart: base, bMin: 180,
			want: true,
		},
		{
			name:   "new showing ends exactly at existing start",
			aStart: base.Add(-90 * time.Minute), aMin: 90,
			bStart: base, bMin: 120,
			want: false,
		},
		{
			name:   "same start different runtimes",
			aStart: base, aMin: 60,
			bStart: base, bMin: 180,
			want: true,
		},
		{
			name:   "disjoint with a gap",
			aStart: base, aMin: 120,
			bStart: base.Add(4 * time.Hour), bMin: 120,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := windowsOverlap(tt.aStart, tt.aMin, tt.bStart, tt.bMin); got != tt.want {
				t.Errorf("windowsOverlap(%v+%dm, %v+%dm) = %v, want %v",
					tt.aStart.Format("15:04"), tt.aMin, tt.bStart.Format("15:04"), tt.bMin, got, tt.want)
			}
		})
	}
}
