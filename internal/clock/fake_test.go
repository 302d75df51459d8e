package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 7, 17, 0, 0, 0, time.UTC)

func TestFake_NowAndAdvance(t *testing.T) {
	c := Fake(epoch)
	assert.Equal(t, epoch, c.Now())

	c.Advance(90 * time.Minute)
	assert.Equal(t, epoch.Add(90*time.Minute), c.Now())

	c.Set(epoch)
	assert.Equal(t, epoch, c.Now())
}

func TestFake_TickerFiresOnDeadline(t *testing.T) {
	c := Fake(epoch)
	tk := c.NewTicker(time.Minute)
	defer tk.Stop()

	c.Advance(59 * time.Second)
	select {
	case <-tk.C:
		t.Fatal("ticker fired early")
	default:
	}

	c.Advance(time.Second)
	select {
	case got := <-tk.C:
		assert.Equal(t, epoch.Add(time.Minute), got)
	default:
		t.Fatal("ticker did not fire")
	}
}

func TestFake_TickerDropsWhenBehind(t *testing.T) {
	c := Fake(epoch)
	tk := c.NewTicker(time.Minute)
	defer tk.Stop()

	c.Advance(5 * time.Minute)

	got := <-tk.C
	assert.Equal(t, epoch.Add(time.Minute), got)
	select {
	case <-tk.C:
		t.Fatal("expected dropped ticks")
	default:
	}

	// The schedule continues from the last deadline.
	c.Advance(time.Minute)
	assert.Equal(t, epoch.Add(6*time.Minute), <-tk.C)
}

func TestFake_StoppedTickerIsSilent(t *testing.T) {
	c := Fake(epoch)
	tk := c.NewTicker(time.Minute)
	require.Equal(t, 1, c.Tickers())

	tk.Stop()
	assert.Equal(t, 0, c.Tickers())

	c.Advance(time.Hour)
	select {
	case <-tk.C:
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestFake_BlockUntil(t *testing.T) {
	c := Fake(epoch)

	done := make(chan struct{})
	go func() {
		c.BlockUntil(2)
		close(done)
	}()

	a := c.NewTicker(time.Second)
	defer a.Stop()
	b := c.NewTicker(time.Second)
	defer b.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("BlockUntil did not return")
	}
}

func TestFake_NewTickerPanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { Fake(epoch).NewTicker(0) })
}

func TestReal_Now(t *testing.T) {
	before := time.Now()
	got := Real().Now()
	assert.False(t, got.Before(before))
}
