package bridge

import "testing"

func TestTranslate(t *testing.T) {
	tests := []struct {
		name   string
		value  int
		inLow  int
		inHigh int
		outLow int
		outHi  int
		want   int
	}{
		{"controller min to brightness", 0, 0, 127, 0, 255, 0},
		{"controller max to brightness", 127, 0, 127, 0, 255, 255},
		{"controller mid to brightness rounds", 64, 0, 127, 0, 255, 129},
		{"controller max to hue", 127, 0, 127, 0, 360, 360},
		{"controller max to saturation", 127, 0, 127, 0, 100, 100},
		{"controller quarter to saturation", 32, 0, 127, 0, 100, 25},
		{"identity range", 42, 0, 127, 0, 127, 42},
		{"inverted output range", 0, 0, 127, 255, 0, 255},
		{"offset input range", 60, 50, 70, 0, 100, 50},
		{"degenerate input range", 99, 10, 10, 0, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.value, tt.inLow, tt.inHigh, tt.outLow, tt.outHi)
			if got != tt.want {
				t.Errorf("Translate(%d, %d, %d, %d, %d) = %d, want %d",
					tt.value, tt.inLow, tt.inHigh, tt.outLow, tt.outHi, got, tt.want)
			}
		})
	}
}

func TestFromController(t *testing.T) {
	if got := fromController(127, 255); got != 255 {
		t.Errorf("fromController(127, 255) = %d, want 255", got)
	}
	if got := fromController(0, 360); got != 0 {
		t.Errorf("fromController(0, 360) = %d, want 0", got)
	}
}
