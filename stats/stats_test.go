package stats

import (
	"math"
	"testing"
	"time"
)

func TestAverage(t *testing.T) {
	var s Average
	for _, x := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		s.Add(x)
	}
	if s.Count != 8 || s.Mean != 5 {
		t.Errorf("got count %v mean %v", s.Count, s.Mean)
	}
	// sample stddev over the series
	if math.Abs(s.StdDev-2.138) > 0.001 {
		t.Error("got stddev", s.StdDev)
	}
}

func TestAverageDuration(t *testing.T) {
	var s Average
	s.AddDuration(1500 * time.Microsecond)
	if s.Mean != 1.5 {
		t.Error("got mean", s.Mean)
	}
	var empty Average
	if empty.String() != "-" {
		t.Error("got", empty.String())
	}
}

func TestEMA(t *testing.T) {
	var e EMA
	v := e.Add(10, 9)
	if v != 10 {
		t.Error("first sample: got", v)
	}
	e = EMA(v)
	v = e.Add(20, 9)
	if v != 12 {
		t.Error("got", v)
	}
}
