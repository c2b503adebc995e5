package app

import (
	"encoding/json"
	"errors"

	"github.com/mattjoyce/webshell/internal/runtime"
	"github.com/mattjoyce/webshell/internal/tag"
)

type scaleChange struct {
	ScaleFactor float64              `json:"scaleFactor"`
	Size        runtime.PhysicalSize `json:"size"`
}

func windowEventName(ev runtime.WindowEvent) (tag.Event, any) {
	switch ev.Kind {
	case runtime.WindowResized:
		return tag.WindowResize, ev.Size
	case runtime.WindowMoved:
		return tag.WindowMove, ev.Position
	case runtime.WindowCloseRequested:
		return tag.WindowCloseRequested, nil
	case runtime.WindowDestroyed:
		return tag.WindowDestroyed, nil
	case runtime.WindowFocused:
		if ev.Focused {
			return tag.WindowFocus, nil
		}
		return tag.WindowBlur, nil
	case runtime.WindowScaleFactorChanged:
		return tag.WindowScaleChange, scaleChange{ScaleFactor: ev.ScaleFactor, Size: ev.Size}
	}
	return "", nil
}

// onWindowEvent forwards a native window event to host listeners and,
// while the window is alive, to its script listeners.
func (m *Manager) onWindowEvent(w *Window, ev runtime.WindowEvent) {
	name, payload := windowEventName(ev)
	if name == "" {
		return
	}
	if ev.Kind == runtime.WindowDestroyed {
		if m.detach(w.label) {
			m.metrics.WindowDestroyed()
			m.logger.Info("window destroyed", "window", w.label)
		}
		m.trigger(w, name, payload)
		return
	}
	m.emitAndTrigger(w, name, payload)
}

// onFileDrop forwards drag and drop activity. It always claims the event.
func (m *Manager) onFileDrop(ev runtime.FileDropEvent, detached runtime.DetachedWindow) bool {
	w, ok := m.GetWindow(detached.Label)
	if !ok {
		return false
	}
	switch ev.Kind {
	case runtime.FileDropHovered:
		m.emitAndTrigger(w, tag.FileDropHover, ev.Paths)
	case runtime.FileDropDropped:
		m.emitAndTrigger(w, tag.FileDrop, ev.Paths)
	case runtime.FileDropCancelled:
		m.emitAndTrigger(w, tag.FileDropCancelled, nil)
	default:
		return false
	}
	return true
}

func (m *Manager) emitAndTrigger(w *Window, name tag.Event, payload any) {
	if err := w.Emit(name, payload); err != nil && !errors.Is(err, runtime.ErrWindowClosed) {
		m.logger.Warn("emit window event", "window", w.label, "event", name, "error", err)
	}
	m.trigger(w, name, payload)
}

func (m *Manager) trigger(w *Window, name tag.Event, payload any) {
	var data *string
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			m.logger.Warn("marshal window event", "window", w.label, "event", name, "error", err)
			return
		}
		s := string(b)
		data = &s
	}
	m.Trigger(name, w.label, data)
}
