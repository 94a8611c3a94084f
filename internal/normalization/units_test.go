package normalization

import (
	"testing"
)

func TestNormalizeToCm(t *testing.T) {
	cases := []struct {
		value float64
		unit  string
		want  float64
		ok    bool
	}{
		{100, "mm", 10.0, true},
		{1, "m", 100.0, true},
		{1, "in", 2.54, true},
		{25, "cm", 25, true},
		{1, " CM ", 1, true},
		{-1, "cm", 0, false},
		{5, "ft", 0, false},
		{5, "", 0, false},
	}
	for _, c := range cases {
		got, ok := NormalizeToCm(c.value, c.unit)
		if ok != c.ok || got != c.want {
			t.Fatalf("NormalizeToCm(%v, %q) = (%v, %v), want (%v, %v)", c.value, c.unit, got, ok, c.want, c.ok)
		}
	}
}

func TestCalculateCBM(t *testing.T) {
	if got, ok := CalculateCBM(10, 10, 10); !ok || got != 0.001 {
		t.Fatalf("CalculateCBM(10,10,10) = (%v, %v), want (0.001, true)", got, ok)
	}
	if got, ok := CalculateCBM(100, 100, 100); !ok || got != 1.0 {
		t.Fatalf("CalculateCBM(100,100,100) = (%v, %v), want (1, true)", got, ok)
	}
	// rounding to six decimals
	if got, ok := CalculateCBM(3, 3, 3); !ok || got != 0.000027 {
		t.Fatalf("CalculateCBM(3,3,3) = (%v, %v), want (0.000027, true)", got, ok)
	}
	for _, bad := range [][3]float64{
		{0, 10, 10},
		{10, -1, 10},
		{10, 10, 0},
		{100001, 10, 10},
	} {
		if _, ok := CalculateCBM(bad[0], bad[1], bad[2]); ok {
			t.Fatalf("CalculateCBM(%v) accepted, want rejection", bad)
		}
	}
}

func TestVolumeClass(t *testing.T) {
	cases := []struct {
		cbm  float64
		want string
	}{
		{-1, "unknown"},
		{0, "unknown"},
		{0.05, "parcel"},
		{0.5, "pallet"},
		{2, "freight"},
	}
	for _, c := range cases {
		if got := VolumeClass(c.cbm); got != c.want {
			t.Fatalf("VolumeClass(%v) = %q, want %q", c.cbm, got, c.want)
		}
	}
}

func TestTimelineClass(t *testing.T) {
	cases := []struct {
		step int
		want string
	}{
		{0, "unknown"},
		{1, "design"},
		{4, "production"},
		{5, "quality"},
		{6, "shipping"},
		{7, "delivery"},
	}
	for _, c := range cases {
		if got := TimelineClass(c.step); got != c.want {
			t.Fatalf("TimelineClass(%d) = %q, want %q", c.step, got, c.want)
		}
	}
}
