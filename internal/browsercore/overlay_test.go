package browsercore

import (
	"context"
	"sync"
	"testing"
	"time"

	"signup-e2e/internal/domain/entity"
	"signup-e2e/internal/infrastructure/browser/fake"
	"signup-e2e/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
)

var (
	bannerSel  = entity.ID("cookie-banner")
	bannerBSel = entity.ID("late-banner")
	acceptSel  = entity.ID("accept-all")
	textSel    = entity.XPath("//button[contains(text(), 'Accept')]")
	rejectSel  = entity.XPath("//button[contains(text(), 'Reject')]")
	closeSel   = entity.XPath("//button[contains(@aria-label, 'close')]")
)

func testOverlay() OverlayDescriptor {
	return OverlayDescriptor{
		Container: entity.NewStrategy("cookie_banner", bannerSel, bannerBSel),
		Actions: []OverlayAction{
			{Name: "accept_all", Strategy: entity.NewStrategy("accept_all", acceptSel)},
			{Name: "accept", Strategy: entity.NewStrategy("accept", textSel)},
			{Name: "reject", Strategy: entity.NewStrategy("reject", rejectSel)},
			{Name: "close", Strategy: entity.NewStrategy("close", closeSel)},
		},
		Escape:    true,
		BodyClick: true,
	}
}

func TestDismiss_NoOverlayIsNoop(t *testing.T) {
	b := fake.New()
	accept := fake.NewElement("accept")
	b.Put(acceptSel, accept)
	c := newTestCore(b, testOverlay())

	c.DismissBlockingOverlays(context.Background())
	c.DismissBlockingOverlays(context.Background())

	assert.Zero(t, accept.Clicks())
	assert.Empty(t, b.Keys())
}

func TestDismiss_DisabledDescriptor(t *testing.T) {
	b := fake.New()
	b.Put(bannerSel, fake.NewElement("banner"))
	newTestCore(b, OverlayDescriptor{}).DismissBlockingOverlays(context.Background())
	assert.Zero(t, b.FindCount(bannerSel))
}

func TestDismiss_AcceptAllIsIdempotent(t *testing.T) {
	b := fake.New()
	banner := fake.NewElement("banner")
	accept := fake.NewElement("accept")
	accept.OnClick = func() { banner.SetHidden(true) }
	b.Put(bannerSel, banner).Put(acceptSel, accept)
	c := newTestCore(b, testOverlay())

	c.DismissBlockingOverlays(context.Background())
	assert.True(t, banner.Hidden)
	assert.Equal(t, 1, accept.Clicks())

	c.DismissBlockingOverlays(context.Background())
	assert.Equal(t, 1, accept.Clicks(), "second call finds nothing to dismiss")
}

func TestDismiss_ClickThatDoesNotCloseMovesOn(t *testing.T) {
	b := fake.New()
	banner := fake.NewElement("banner")
	accept := fake.NewElement("accept")
	reject := fake.NewElement("reject")
	reject.OnClick = func() { banner.SetHidden(true) }
	b.Put(bannerSel, banner).Put(acceptSel, accept).Put(rejectSel, reject)

	newTestCore(b, testOverlay()).DismissBlockingOverlays(context.Background())

	assert.Equal(t, 1, accept.Clicks())
	assert.Equal(t, 1, reject.Clicks())
	assert.True(t, banner.Hidden)
	assert.Empty(t, b.Keys())
}

func TestDismiss_SkipsNonInteractableControl(t *testing.T) {
	b := fake.New()
	banner := fake.NewElement("banner")
	accept := fake.NewElement("accept")
	accept.Disabled = true
	closeBtn := fake.NewElement("close")
	closeBtn.OnClick = func() { banner.SetHidden(true) }
	b.Put(bannerSel, banner).Put(acceptSel, accept).Put(closeSel, closeBtn)

	newTestCore(b, testOverlay()).DismissBlockingOverlays(context.Background())

	assert.Zero(t, accept.Clicks())
	assert.Equal(t, 1, closeBtn.Clicks())
}

func TestDismiss_EscapeFallback(t *testing.T) {
	b := fake.New()
	banner := fake.NewElement("banner")
	b.Put(bannerSel, banner)
	b.OnKey = func(_ *fake.Browser, key entity.Key) {
		if key == entity.KeyEscape {
			banner.SetHidden(true)
		}
	}

	newTestCore(b, testOverlay()).DismissBlockingOverlays(context.Background())

	assert.Equal(t, []entity.Key{entity.KeyEscape}, b.Keys())
	assert.True(t, banner.Hidden)
}

func TestDismiss_BodyClickFallback(t *testing.T) {
	b := fake.New()
	banner := fake.NewElement("banner")
	body := fake.NewElement("body")
	body.OnClick = func() { banner.SetHidden(true) }
	b.Put(bannerSel, banner).Put(entity.CSS("body"), body)

	newTestCore(b, testOverlay()).DismissBlockingOverlays(context.Background())

	assert.Equal(t, 1, body.Clicks())
	assert.True(t, banner.Hidden)
}

func TestDismiss_ExhaustionIsSwallowed(t *testing.T) {
	b := fake.New()
	banner := fake.NewElement("banner")
	accept := fake.NewElement("accept")
	accept.NativeErr = assert.AnError
	body := fake.NewElement("body")
	b.Put(bannerSel, banner).Put(acceptSel, accept).Put(entity.CSS("body"), body)

	assert.NotPanics(t, func() {
		newTestCore(b, testOverlay()).DismissBlockingOverlays(context.Background())
	})
	assert.False(t, banner.Hidden)
	assert.Equal(t, 1, body.Clicks())
	assert.Len(t, b.Keys(), 1)
}

func TestDismiss_CatchesLateBanner(t *testing.T) {
	b := fake.New()
	first := fake.NewElement("first")
	late := fake.NewElement("late")
	late.Hidden = true
	accept := fake.NewElement("accept")
	var once sync.Once
	accept.OnClick = func() {
		first.SetHidden(true)
		once.Do(func() {
			time.AfterFunc(5*time.Millisecond, func() { late.SetHidden(false) })
		})
	}
	closeBtn := fake.NewElement("close")
	closeBtn.OnClick = func() { late.SetHidden(true) }
	b.Put(bannerSel, first).Put(bannerBSel, late).Put(acceptSel, accept).Put(closeSel, closeBtn)

	newTestCore(b, testOverlay()).DismissBlockingOverlays(context.Background())

	assert.True(t, first.Hidden)
	assert.True(t, late.Hidden)
	assert.Equal(t, 1, closeBtn.Clicks())
}

func TestDismiss_RechecksWhenFirstProbeFindsNothing(t *testing.T) {
	b := fake.New()
	banner := fake.NewElement("banner")
	banner.Hidden = true
	accept := fake.NewElement("accept")
	accept.OnClick = func() { banner.SetHidden(true) }
	b.Put(bannerSel, banner).Put(acceptSel, accept)

	timings := testTimings()
	timings.OverlayProbe = 20 * time.Millisecond
	timings.OverlayRoundWait = 200 * time.Millisecond
	c := New(b, logger.NewNop(), timings, testOverlay())

	time.AfterFunc(100*time.Millisecond, func() { banner.SetHidden(false) })
	c.DismissBlockingOverlays(context.Background())

	assert.Equal(t, 1, accept.Clicks())
	assert.True(t, banner.Hidden)
}
