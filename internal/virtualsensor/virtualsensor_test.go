package virtualsensor

import "testing"

func TestFlow_staysInRange(t *testing.T) {
	f := NewFlow(-30, 30, 0)
	if err := f.Prepare(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		v, err := f.ReadScaled()
		if err != nil {
			t.Fatal(err)
		}
		if v < -30.0001 || v > 30.0001 {
			t.Fatalf("ReadScaled() = %v, out of [-30,30]", v)
		}
	}
}

func TestPressure_onlyHitsExtremes(t *testing.T) {
	p := NewPressure(2, 20, 0)
	if err := p.Prepare(); err != nil {
		t.Fatal(err)
	}
	v, err := p.ReadScaled()
	if err != nil {
		t.Fatal(err)
	}
	if v != 2 && v != 20 {
		t.Fatalf("ReadScaled() = %v, want 2 or 20 (square wave)", v)
	}
}

func TestFlow_defaultPeriod(t *testing.T) {
	f := NewFlow(-30, 30, 0)
	if f.Period.Seconds() != 3 {
		t.Errorf("default Period = %v, want 3s", f.Period)
	}
}
