package game

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// MockScene is a mock implementation of the Scene interface for testing.
type MockScene struct {
	updateCalls int
	drawCalls   int
	closed      bool
	deltaTime   float64
}

func (m *MockScene) Update(deltaTime float64) {
	m.updateCalls++
	m.deltaTime = deltaTime
}

func (m *MockScene) Draw(screen *ebiten.Image) {
	m.drawCalls++
}

func (m *MockScene) Close() {
	m.closed = true
}

// TestSceneManagerSwitchTo verifies that SwitchTo changes the base scene and closes the old one.
func TestSceneManagerSwitchTo(t *testing.T) {
	sm := NewSceneManager(nil)
	if sm.GetCurrentScene() != nil {
		t.Fatal("Expected no scene initially")
	}

	first := &MockScene{}
	second := &MockScene{}
	sm.SwitchTo(first)
	sm.SwitchTo(second)

	if sm.GetCurrentScene() != second {
		t.Error("SwitchTo did not set the current scene correctly")
	}
	if !first.closed {
		t.Error("replaced scene should be closed")
	}
	if second.closed {
		t.Error("active scene must not be closed")
	}
}

// TestSceneManagerUpdate verifies that Update drives only the top-most scene.
func TestSceneManagerUpdate(t *testing.T) {
	sm := NewSceneManager(nil)
	sm.Update(0.016) // no scene, should not panic

	base := &MockScene{}
	overlay := &MockScene{}
	sm.SwitchTo(base)
	sm.Update(0.016)
	if base.updateCalls != 1 || base.deltaTime != 0.016 {
		t.Fatalf("base Update calls=%d dt=%v", base.updateCalls, base.deltaTime)
	}

	sm.Push(overlay)
	sm.Update(0.016)
	if base.updateCalls != 1 {
		t.Error("base scene must not update while an overlay is shown")
	}
	if overlay.updateCalls != 1 {
		t.Error("overlay Update was not called")
	}
	if sm.Top() != overlay {
		t.Error("Top() should return the overlay")
	}
}

// TestSceneManagerDrawOrder verifies that Draw renders base then overlays.
func TestSceneManagerDrawOrder(t *testing.T) {
	sm := NewSceneManager(nil)
	screen := ebiten.NewImage(390, 844)
	sm.Draw(screen) // no scene, should not panic

	base := &MockScene{}
	overlay := &MockScene{}
	sm.SwitchTo(base)
	sm.Push(overlay)
	sm.Draw(screen)

	if base.drawCalls != 1 || overlay.drawCalls != 1 {
		t.Errorf("draw calls base=%d overlay=%d, want 1/1", base.drawCalls, overlay.drawCalls)
	}
}

// TestSceneManagerPop verifies Pop closes the overlay and restores input to the base scene.
func TestSceneManagerPop(t *testing.T) {
	sm := NewSceneManager(nil)
	if sm.Pop() != nil {
		t.Fatal("Pop() on empty stack should return nil")
	}

	base := &MockScene{}
	overlay := &MockScene{}
	sm.SwitchTo(base)
	sm.Push(overlay)

	if got := sm.Pop(); got != overlay {
		t.Fatalf("Pop() = %v, want overlay", got)
	}
	if !overlay.closed {
		t.Error("popped overlay should be closed")
	}
	if sm.OverlayCount() != 0 || sm.Top() != base {
		t.Error("base scene should be on top after Pop")
	}
}

// TestSceneManagerClose verifies Close closes every scene.
func TestSceneManagerClose(t *testing.T) {
	sm := NewSceneManager(nil)
	base := &MockScene{}
	overlay := &MockScene{}
	sm.SwitchTo(base)
	sm.Push(overlay)

	sm.Close()
	if !base.closed || !overlay.closed {
		t.Errorf("closed base=%v overlay=%v", base.closed, overlay.closed)
	}
	if sm.Top() != nil {
		t.Error("no scene should remain after Close")
	}
}
