package market

import "testing"

func TestParseSentimentRoundTrip(t *testing.T) {
	for _, s := range []Sentiment{Bullish, Bearish, Volatile, Sideways, Choppy, Neutral} {
		got, ok := ParseSentiment(s.String())
		if !ok || got != s {
			t.Fatalf("ParseSentiment(%q) = %v, %v", s.String(), got, ok)
		}
	}
}

func TestParseSentimentRejectsCalm(t *testing.T) {
	if _, ok := ParseSentiment("CALM"); ok {
		t.Fatal("CALM must not be accepted as a sentiment; SIDEWAYS is canonical")
	}
}

func TestParseSentimentUnknown(t *testing.T) {
	got, ok := ParseSentiment("FROTHY")
	if ok {
		t.Fatal("unknown sentiment should not parse")
	}
	if got != Neutral {
		t.Fatalf("unknown sentiment default = %v, want Neutral", got)
	}
}

func TestParseIntensityRoundTrip(t *testing.T) {
	for _, i := range []Intensity{Mild, Moderate, Normal, Aggressive, Extreme} {
		got, ok := ParseIntensity(i.String())
		if !ok || got != i {
			t.Fatalf("ParseIntensity(%q) = %v, %v", i.String(), got, ok)
		}
	}
}

func TestIntensityVolatilityMultipliers(t *testing.T) {
	want := map[Intensity]float64{
		Mild: 0.4, Moderate: 0.7, Normal: 1.0, Aggressive: 1.2, Extreme: 1.6,
	}
	for i, w := range want {
		if got := i.VolatilityMultiplier(); got != w {
			t.Errorf("%v.VolatilityMultiplier() = %f, want %f", i, got, w)
		}
	}
}

func TestSentimentUpProbability(t *testing.T) {
	if Bullish.UpProbability() != 0.65 {
		t.Error("Bullish up probability should be 0.65")
	}
	if Bearish.UpProbability() != 0.35 {
		t.Error("Bearish up probability should be 0.35")
	}
	for _, s := range []Sentiment{Volatile, Sideways, Choppy, Neutral} {
		if s.UpProbability() != 0.5 {
			t.Errorf("%v up probability should be 0.5", s)
		}
	}
}

func TestRoundTick(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{100.00, 100.00},
		{100.02, 100.00},
		{100.03, 100.05},
		{99.975, 100.00},
	}
	for _, c := range cases {
		if got := RoundTick(c.in); got != c.want {
			t.Errorf("RoundTick(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}
