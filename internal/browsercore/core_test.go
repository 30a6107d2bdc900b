package browsercore

import (
	"context"
	"testing"
	"time"

	"signup-e2e/internal/domain/entity"
	"signup-e2e/internal/infrastructure/browser/fake"
	"signup-e2e/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
)

func testTimings() Timings {
	return Timings{
		Timeout:          100 * time.Millisecond,
		PollInterval:     5 * time.Millisecond,
		OverlayProbe:     40 * time.Millisecond,
		OverlayControl:   40 * time.Millisecond,
		OverlayGone:      40 * time.Millisecond,
		OverlayRounds:    2,
		OverlayRoundWait: 30 * time.Millisecond,
		ClickSettle:      time.Millisecond,
	}
}

func newTestCore(b *fake.Browser, overlay OverlayDescriptor) *Core {
	return New(b, logger.NewNop(), testTimings(), overlay)
}

func TestTimings_WithDefaults(t *testing.T) {
	got := Timings{}.withDefaults()
	assert.Equal(t, DefaultTimings(), got)

	custom := Timings{Timeout: time.Second, OverlayRounds: 3}.withDefaults()
	assert.Equal(t, time.Second, custom.Timeout)
	assert.Equal(t, 3, custom.OverlayRounds)
	assert.Equal(t, defaultPollInterval, custom.PollInterval)

	zero := Timings{ClickSettle: 0, OverlayRoundWait: -time.Second}.withDefaults()
	assert.Equal(t, time.Second, zero.ClickSettle)
	assert.Equal(t, 500*time.Millisecond, zero.OverlayRoundWait)
}

func TestCore_Poll(t *testing.T) {
	c := newTestCore(fake.New(), OverlayDescriptor{})
	ctx := context.Background()

	calls := 0
	ok := c.Poll(ctx, 0, func(context.Context) bool { calls++; return false })
	assert.False(t, ok)
	assert.Equal(t, 1, calls, "zero timeout evaluates once")

	calls = 0
	ok = c.Poll(ctx, time.Second, func(context.Context) bool { calls++; return calls == 3 })
	assert.True(t, ok)
	assert.Equal(t, 3, calls)

	start := time.Now()
	ok = c.Poll(ctx, 30*time.Millisecond, func(context.Context) bool { return false })
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCore_PollHonoursCancel(t *testing.T) {
	c := newTestCore(fake.New(), OverlayDescriptor{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok := c.Poll(ctx, time.Minute, func(context.Context) bool { return false })
	assert.False(t, ok)
}

func TestCore_CurrentURLSwallowsErrors(t *testing.T) {
	b := fake.New()
	b.SetURL("https://app.test/create-account")
	c := newTestCore(b, OverlayDescriptor{})
	assert.Equal(t, "https://app.test/create-account", c.CurrentURL(context.Background()))

	b.URLErr = assert.AnError
	assert.Equal(t, "", c.CurrentURL(context.Background()))
}

func TestSleep_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	Sleep(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}

func strategyOf(n int) (entity.Strategy, []entity.Selector) {
	sels := make([]entity.Selector, n)
	for i := range sels {
		sels[i] = entity.CSS("#candidate-" + string(rune('a'+i)))
	}
	return entity.NewStrategy("email_field", sels...), sels
}
