package scenes

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/decker502/marejadas/pkg/config"
	"github.com/decker502/marejadas/pkg/frames"
	"github.com/decker502/marejadas/pkg/game"
	"github.com/decker502/marejadas/pkg/player"
	"github.com/decker502/marejadas/pkg/ui"
	"github.com/decker502/marejadas/pkg/utils"
)

var instantFetcher = frames.FetcherFunc(func(ctx context.Context, rawurl string) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 5)), nil
})

func newTestEnv(t *testing.T, fetcher frames.Fetcher) *Env {
	t.Helper()
	cfg := config.Default()
	rates, err := cfg.Rates()
	if err != nil {
		t.Fatalf("Rates() error: %v", err)
	}
	rm, err := game.NewResourceManager(nil)
	if err != nil {
		t.Fatalf("NewResourceManager error: %v", err)
	}
	env := &Env{
		Ctx:       context.Background(),
		Config:    cfg,
		Rates:     rates,
		Fetcher:   fetcher,
		Resources: rm,
		Scenes:    game.NewSceneManager(nil),
		Settings:  game.NewSettingsManager(nil, nil),
		Logger:    slog.Default(),
	}
	t.Cleanup(env.Scenes.Close)
	return env
}

func click(w interface{ Update(utils.InputState) bool }, r ui.Rect) {
	x, y := r.Center()
	w.Update(utils.InputState{JustPressed: true, Pressed: true, X: int(x), Y: int(y)})
	w.Update(utils.InputState{JustReleased: true, X: int(x), Y: int(y)})
}

// tap 通过场景的输入分发点击 r 的中心
func tap(handle func(utils.InputState), r ui.Rect) {
	x, y := r.Center()
	handle(utils.InputState{JustPressed: true, Pressed: true, X: int(x), Y: int(y)})
	handle(utils.InputState{JustReleased: true, X: int(x), Y: int(y)})
}

func openReadyPlayer(t *testing.T, env *Env) *PlayerScene {
	t.Helper()
	s, err := NewPlayerScene(env, env.Config.Dataset(""))
	if err != nil {
		t.Fatalf("NewPlayerScene error: %v", err)
	}
	env.Scenes.SwitchTo(s)

	select {
	case <-s.Player().Preloaded():
	case <-time.After(2 * time.Second):
		t.Fatal("preload did not finish")
	}
	s.step(0)
	return s
}

// TestDatasetMenuOpen 打开数据集并记住选择
func TestDatasetMenuOpen(t *testing.T) {
	env := newTestEnv(t, instantFetcher)
	menu := NewDatasetMenuScene(env)
	env.Scenes.SwitchTo(menu)

	tap(menu.handleInput, menu.rows[0].Bounds)

	ps, ok := env.Scenes.GetCurrentScene().(*PlayerScene)
	if !ok {
		t.Fatalf("current scene = %T, want *PlayerScene", env.Scenes.GetCurrentScene())
	}
	if ps.dataset.ID != "sam-pacifico" {
		t.Errorf("opened dataset %q", ps.dataset.ID)
	}
	if env.Settings.Preferences().LastDataset != "sam-pacifico" {
		t.Error("last dataset not remembered")
	}
}

// TestPlayerSceneDisabledWhilePreloading 预加载期间控件不可用
func TestPlayerSceneDisabledWhilePreloading(t *testing.T) {
	gate := make(chan struct{})
	blocking := frames.FetcherFunc(func(ctx context.Context, rawurl string) (image.Image, error) {
		select {
		case <-gate:
			return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	env := newTestEnv(t, blocking)
	s, err := NewPlayerScene(env, env.Config.Dataset(""))
	if err != nil {
		t.Fatalf("NewPlayerScene error: %v", err)
	}
	env.Scenes.SwitchTo(s)
	s.step(0)

	tap(s.handleInput, s.play.Bounds)
	tap(s.handleInput, s.expand.Bounds)
	if s.Player().Playing() || env.Scenes.OverlayCount() != 0 {
		t.Error("controls must be inert while preloading")
	}

	// 速率和进度条同样不响应
	interval := s.Player().Interval()
	n := float64(len(s.rates.Labels))
	for i := 0.0; i < n; i++ {
		tap(s.handleInput, ui.Rect{X: s.rates.Bounds.X + i*s.rates.Bounds.W/n, Y: s.rates.Bounds.Y, W: s.rates.Bounds.W / n, H: s.rates.Bounds.H})
	}
	tap(s.handleInput, ui.Rect{X: s.scrub.Bounds.X + s.scrub.Bounds.W*0.8, Y: s.scrub.Bounds.Y, W: 2, H: s.scrub.Bounds.H})
	if got := s.Player().Interval(); got != interval {
		t.Errorf("rate changed while preloading: %v -> %v", interval, got)
	}
	if got := s.Player().Current(); got != 1 {
		t.Errorf("scrub moved to %d while preloading, want 1", got)
	}
	if s.rates.Enabled || s.scrub.Enabled {
		t.Error("rates and scrub bar should be disabled while preloading")
	}
	if got := s.Player().State(); got != player.StatePreloading {
		t.Errorf("state = %v, want preloading", got)
	}
	if got := PreloadLabel(s.Player().Progress().Percent); got != "Precargando frames: 0%" {
		t.Errorf("label = %q", got)
	}
	close(gate)
}

// TestPlayerSceneControls 播放、逐帧、拖动和速率
func TestPlayerSceneControls(t *testing.T) {
	env := newTestEnv(t, instantFetcher)
	s := openReadyPlayer(t, env)
	p := s.Player()

	tap(s.handleInput, s.play.Bounds)
	if !p.Playing() {
		t.Fatal("play button should start playback")
	}
	s.step(0.2)
	if p.Current() != 2 {
		t.Errorf("after 200ms current = %d, want 2", p.Current())
	}
	if s.play.Icon != ui.IconPause {
		t.Error("play button should show pause while playing")
	}

	tap(s.handleInput, s.next.Bounds)
	if p.Playing() || p.Current() != 3 {
		t.Errorf("next: playing=%v current=%d, want paused at 3", p.Playing(), p.Current())
	}

	// 进度条最右端 -> 最后一帧
	end := s.scrub.Bounds
	s.handleInput(utils.InputState{JustPressed: true, Pressed: true, X: int(end.X + end.W), Y: int(end.Y)})
	s.handleInput(utils.InputState{JustReleased: true, X: int(end.X + end.W), Y: int(end.Y)})
	if p.Current() != 61 {
		t.Errorf("scrub to end: current = %d, want 61", p.Current())
	}

	click(s.rates, ui.Rect{X: segmentRect.X + segmentRect.W - 10, Y: segmentRect.Y, W: 1, H: segmentRect.H})
	if p.Interval() != 100*time.Millisecond {
		t.Errorf("interval = %v, want 100ms", p.Interval())
	}
}

// TestFullscreenSceneRoundTrip 进入全屏、操作 HUD、退出并同步帧
func TestFullscreenSceneRoundTrip(t *testing.T) {
	env := newTestEnv(t, instantFetcher)
	s := openReadyPlayer(t, env)
	p := s.Player()
	p.Seek(10)

	tap(s.handleInput, s.expand.Bounds)
	fs, ok := env.Scenes.Top().(*FullscreenScene)
	if !ok {
		t.Fatalf("top scene = %T, want *FullscreenScene", env.Scenes.Top())
	}
	if p.State() != player.StateFullscreen {
		t.Fatalf("state = %v, want fullscreen", p.State())
	}
	if fs.Session().VisibleFrame() != 10 {
		t.Errorf("fullscreen opened at %d, want 10", fs.Session().VisibleFrame())
	}

	// 点击画面：隐藏 HUD，再点一次显示
	tap(fs.handleInput, ui.Rect{X: 190, Y: 400, W: 10, H: 10})
	if fs.Session().HUD().Visible() {
		t.Fatal("background tap should hide the HUD")
	}
	tap(fs.handleInput, ui.Rect{X: 190, Y: 400, W: 10, H: 10})
	if !fs.Session().HUD().Visible() {
		t.Fatal("second background tap should show the HUD")
	}

	tap(fs.handleInput, fs.next.Bounds)
	fs.step(1.0 / 60.0)
	fs.step(1.0 / 60.0)
	if got := fs.Session().VisibleFrame(); got != 11 {
		t.Errorf("visible frame after next = %d, want 11", got)
	}
	if !fs.Session().HUD().Visible() {
		t.Error("HUD should stay visible after pressing a control")
	}

	tap(fs.handleInput, fs.close.Bounds)
	if env.Scenes.OverlayCount() != 0 {
		t.Fatal("close button should pop the overlay")
	}
	if p.State() == player.StateFullscreen {
		t.Error("player still in fullscreen after close")
	}
	if p.Current() != 11 {
		t.Errorf("inline frame after exit = %d, want 11", p.Current())
	}
}

// TestFullscreenSceneHUDFade HUD 自动隐藏后淡出
func TestFullscreenSceneHUDFade(t *testing.T) {
	env := newTestEnv(t, instantFetcher)
	s := openReadyPlayer(t, env)
	s.OpenFullscreen()
	fs := env.Scenes.Top().(*FullscreenScene)

	for i := 0; i < 60*3+30; i++ {
		fs.step(1.0 / 60.0)
	}
	if fs.Session().HUD().Visible() {
		t.Fatal("HUD should auto-hide after 3s")
	}
	if fs.hudFade.Alpha() != 0 {
		t.Errorf("HUD alpha = %v after fade, want 0", fs.hudFade.Alpha())
	}

	// HUD 隐藏时点击控件位置只会唤出 HUD
	tap(fs.handleInput, fs.next.Bounds)
	if fs.Session().Current() != 1 {
		t.Errorf("hidden control fired: current = %d", fs.Session().Current())
	}
	if !fs.Session().HUD().Visible() {
		t.Error("tap while hidden should show the HUD")
	}
}

// TestPlayerSceneFailedFrames 失败帧不阻止播放，并显示提示
func TestPlayerSceneFailedFrames(t *testing.T) {
	failing := frames.FetcherFunc(func(ctx context.Context, rawurl string) (image.Image, error) {
		if strings.HasSuffix(rawurl, "/Campo7.png") || strings.HasSuffix(rawurl, "/Campo8.png") {
			return nil, errors.New("connection reset")
		}
		return image.NewRGBA(image.Rect(0, 0, 4, 5)), nil
	})
	env := newTestEnv(t, failing)
	s := openReadyPlayer(t, env)

	if s.failed != 2 {
		t.Errorf("failed = %d, want 2", s.failed)
	}
	if !s.play.Enabled {
		t.Error("failed frames must not block playback")
	}
	if e := s.Player().Frame(7); e.OK() || e.URL == "" {
		t.Errorf("frame 7 entry = %+v, want failure with nominal URL", e)
	}

	tests := []struct {
		n    int
		want string
	}{
		{1, "1 frame no disponible"},
		{2, "2 frames no disponibles"},
	}
	for _, tt := range tests {
		if got := FailedLabel(tt.n); !strings.HasPrefix(got, tt.want) {
			t.Errorf("FailedLabel(%d) = %q, want prefix %q", tt.n, got, tt.want)
		}
	}
}

// TestFullscreenSceneStepDefersSwap 手动换帧后隐藏槽至少上传并绘制一次才翻转
func TestFullscreenSceneStepDefersSwap(t *testing.T) {
	env := newTestEnv(t, instantFetcher)
	s := openReadyPlayer(t, env)
	s.Player().Seek(10)
	s.OpenFullscreen()
	fs, ok := env.Scenes.Top().(*FullscreenScene)
	if !ok {
		t.Fatalf("top scene = %T, want *FullscreenScene", env.Scenes.Top())
	}
	fs.step(1.0 / 60.0)
	uploaded := env.Resources.FrameCount()

	// 隐藏槽预取的是 11，反向换帧需要重新指向 9
	tap(fs.handleInput, fs.prev.Bounds)
	fs.step(1.0 / 60.0)
	buf := fs.Session().Buffer()
	if !buf.Pending() {
		t.Fatal("swap should still be pending after the update that follows StepBack")
	}
	if got := fs.Session().VisibleFrame(); got != 10 {
		t.Errorf("visible frame = %d, want 10 until the hidden slot is drawn", got)
	}
	if buf.Hidden().Frame != 9 || env.Resources.FrameCount() != uploaded+1 {
		t.Errorf("hidden slot %d not uploaded (frames %d -> %d)", buf.Hidden().Frame, uploaded, env.Resources.FrameCount())
	}

	fs.step(1.0 / 60.0)
	if buf.Pending() || fs.Session().VisibleFrame() != 9 {
		t.Errorf("after next update: pending=%v visible=%d, want swapped to 9", buf.Pending(), fs.Session().VisibleFrame())
	}
}

// TestFullscreenSceneCloseKeepsVisibleFrame 翻转完成前关闭，内联视图停在屏幕上的那一帧
func TestFullscreenSceneCloseKeepsVisibleFrame(t *testing.T) {
	env := newTestEnv(t, instantFetcher)
	s := openReadyPlayer(t, env)
	s.Player().Seek(10)
	s.OpenFullscreen()
	fs := env.Scenes.Top().(*FullscreenScene)
	fs.step(1.0 / 60.0)

	tap(fs.handleInput, fs.prev.Bounds)
	tap(fs.handleInput, fs.close.Bounds)
	if env.Scenes.OverlayCount() != 0 {
		t.Fatal("close button should pop the overlay")
	}
	if got := s.Player().Current(); got != 10 {
		t.Errorf("inline frame = %d, want last visible frame 10", got)
	}
}

func testGalleries() []config.GalleryConfig {
	lat, lon := -33.03, -71.63
	return []config.GalleryConfig{
		{
			ID: "zona-valparaiso", Name: "Valparaíso", Lat: &lat, Lon: &lon,
			Images: []config.ImageConfig{
				{Label: "Categoría", URL: "http://images.test/valparaiso/categoria.png"},
				{Label: "Altura", URL: "http://images.test/valparaiso/altura.png"},
				{Label: "Periodo", URL: "http://images.test/valparaiso/periodo.png"},
			},
		},
		{
			ID: "folleto", Name: "Folleto",
			Images: []config.ImageConfig{{URL: "http://images.test/folleto/1.png"}},
		},
	}
}

// waitLoaded 等待图集全部加载完成
func waitLoaded(t *testing.T, s *GalleryScene) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Cache().Len() < len(s.Gallery().Images) {
		if time.Now().After(deadline) {
			t.Fatal("gallery preload did not finish")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestDatasetMenuOpenGallery 列表中的图集行打开图集场景
func TestDatasetMenuOpenGallery(t *testing.T) {
	env := newTestEnv(t, instantFetcher)
	env.Config.Galleries = testGalleries()
	menu := NewDatasetMenuScene(env)
	env.Scenes.SwitchTo(menu)

	if len(menu.galleries) != 2 {
		t.Fatalf("gallery rows = %d, want 2", len(menu.galleries))
	}
	if menu.galleries[0].Bounds.Y <= menu.rows[len(menu.rows)-1].Bounds.Y {
		t.Error("gallery rows should come after the dataset rows")
	}

	tap(menu.handleInput, menu.galleries[1].Bounds)
	g, ok := env.Scenes.Top().(*GalleryScene)
	if !ok {
		t.Fatalf("top scene = %T, want *GalleryScene", env.Scenes.Top())
	}
	if g.Gallery().ID != "folleto" {
		t.Errorf("opened gallery %q, want folleto", g.Gallery().ID)
	}

	// 未知 id 不切换场景
	menu.OpenGallery("missing")
	if env.Scenes.Top() != g {
		t.Error("unknown gallery should not switch scenes")
	}
}

// TestGallerySceneViewer 缩略图展开、翻页、HUD 自动隐藏、关闭
func TestGallerySceneViewer(t *testing.T) {
	env := newTestEnv(t, instantFetcher)
	env.Config.Galleries = testGalleries()
	g, err := NewGalleryScene(env, env.Config.Galleries[0])
	if err != nil {
		t.Fatalf("NewGalleryScene error: %v", err)
	}
	env.Scenes.SwitchTo(g)
	waitLoaded(t, g)
	if failed := g.Cache().Failed(); len(failed) != 0 {
		t.Fatalf("failed images: %v", failed)
	}

	tap(g.handleInput, g.cells[1].Bounds)
	v, ok := env.Scenes.Top().(*ImageViewerScene)
	if !ok {
		t.Fatalf("top scene = %T, want *ImageViewerScene", env.Scenes.Top())
	}
	if v.Index() != 2 || v.Title() != "Imagen 2 de 3" {
		t.Errorf("viewer opened at %d (%q), want image 2", v.Index(), v.Title())
	}

	tap(v.handleInput, v.next.Bounds)
	if v.Index() != 3 || v.next.Enabled {
		t.Errorf("after next: index %d, next enabled %v", v.Index(), v.next.Enabled)
	}
	// 最后一张不循环
	v.Next()
	if v.Index() != 3 {
		t.Errorf("Next() on the last image moved to %d", v.Index())
	}
	tap(v.handleInput, v.prev.Bounds)
	if v.Index() != 2 {
		t.Errorf("after prev: index %d, want 2", v.Index())
	}

	// 无操作 3 秒后 HUD 隐藏，点击背景重新显示
	for i := 0; i < 200; i++ {
		v.step(1.0 / 60.0)
	}
	if v.HUD().Visible() {
		t.Fatal("HUD should hide after the delay")
	}
	tap(v.handleInput, ui.Rect{X: 190, Y: 400, W: 10, H: 10})
	if !v.HUD().Visible() {
		t.Fatal("background tap should show the HUD")
	}

	tap(v.handleInput, v.close.Bounds)
	if env.Scenes.OverlayCount() != 0 || env.Scenes.Top() != g {
		t.Error("close should return to the gallery")
	}
}

// TestGallerySceneCancelOnBack 离开图集时放弃未完成的加载
func TestGallerySceneCancelOnBack(t *testing.T) {
	canceled := make(chan struct{}, 8)
	blocking := frames.FetcherFunc(func(ctx context.Context, rawurl string) (image.Image, error) {
		<-ctx.Done()
		canceled <- struct{}{}
		return nil, ctx.Err()
	})
	env := newTestEnv(t, blocking)
	env.Config.Galleries = testGalleries()
	g, err := NewGalleryScene(env, env.Config.Galleries[0])
	if err != nil {
		t.Fatalf("NewGalleryScene error: %v", err)
	}
	env.Scenes.SwitchTo(g)

	tap(g.handleInput, g.back.Bounds)
	if _, ok := env.Scenes.Top().(*DatasetMenuScene); !ok {
		t.Fatalf("top scene = %T, want *DatasetMenuScene", env.Scenes.Top())
	}
	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight fetch was not canceled")
	}
}
