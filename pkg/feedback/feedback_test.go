package feedback

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
)

func TestClickStreamerIsFinite(t *testing.T) {
	rate := beep.SampleRate(44100)
	s, err := clickStreamer(rate, ClickFrequency, ClickDuration)
	if err != nil {
		t.Fatal(err)
	}

	want := rate.N(ClickDuration)
	buf := make([][2]float64, 512)
	total := 0
	peak := 0.0

	for {
		n, ok := s.Stream(buf)
		total += n
		for _, sample := range buf[:n] {
			if sample[0] > peak {
				peak = sample[0]
			}
		}
		if !ok {
			break
		}
		if total > 10*want {
			t.Fatal("click tone does not end")
		}
	}

	if total != want {
		t.Errorf("streamed %d samples, want %d", total, want)
	}
	if peak <= 0 || peak > 0.3 {
		t.Errorf("peak amplitude = %v, want attenuated tone in (0, 0.3]", peak)
	}
}

func TestClickStreamerRejectsBadFrequency(t *testing.T) {
	// A tone at or above the Nyquist frequency cannot be generated.
	if _, err := clickStreamer(beep.SampleRate(8000), 8000, time.Millisecond); err == nil {
		t.Error("expected error for frequency above Nyquist")
	}
}

func TestNop(t *testing.T) {
	var p Player = Nop{}
	p.Click()
	p.Close()
}
