// Package dashboard manages the per-user widget layout. The layout is purely
// local state persisted as a preference under a user-scoped key; activating a
// different user clears the in-memory layout before loading, so one account's
// widgets never leak into another's.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "github.com/AdriBusse/FinanZApp2025-sub000/internal/log"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/models"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/prefs"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/state"
)

// ConfirmFunc asks the user to confirm a removal. Returning false aborts it.
type ConfirmFunc func(widget models.DashboardWidget) bool

// Store holds the active user's widget list and persists changes after a
// debounce window, so a burst of edits writes once.
type Store struct {
	prefs    *prefs.Store
	logger   *applog.Logger
	debounce time.Duration

	mu     sync.Mutex
	userID string
	timer  *time.Timer

	widgets *state.Store[[]models.DashboardWidget]
}

func New(preferences *prefs.Store, debounce time.Duration, logger *applog.Logger) *Store {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if debounce <= 0 {
		debounce = 800 * time.Millisecond
	}
	return &Store{
		prefs:    preferences,
		logger:   logger.WithComponent(applog.ComponentDashboard),
		debounce: debounce,
		widgets:  state.New([]models.DashboardWidget(nil)),
	}
}

// Widgets returns the current layout.
func (s *Store) Widgets() []models.DashboardWidget {
	return s.widgets.Get()
}

// Subscribe registers a layout observer and returns an unsubscribe func.
func (s *Store) Subscribe(fn func([]models.DashboardWidget)) func() {
	return s.widgets.Subscribe(fn)
}

// Activate switches the store to the given user's layout. A pending write for
// the previous user is flushed first so it cannot be lost or land after the
// switch; then the in-memory list is cleared so the previous user's widgets
// are never visible, and the stored layout is loaded from the user-scoped
// preference key.
func (s *Store) Activate(ctx context.Context, userID string) error {
	s.mu.Lock()
	pending := s.timer != nil
	s.stopTimerLocked()
	previous := s.userID
	s.userID = userID
	s.mu.Unlock()

	if pending && previous != "" {
		s.write(ctx, previous, s.widgets.Get())
	}
	s.widgets.Set(nil)
	if userID == "" {
		return nil
	}

	var loaded []models.DashboardWidget
	ok, err := s.prefs.GetJSON(ctx, prefs.DashboardKey(userID), &loaded)
	if err != nil {
		return fmt.Errorf("load dashboard layout: %w", err)
	}
	if ok {
		s.widgets.Set(loaded)
	}
	s.logger.DebugContext(ctx, "dashboard activated",
		applog.FieldUserID, userID, "widget_count", len(loaded))
	return nil
}

// Deactivate clears the layout and drops the user binding, flushing any
// pending write first.
func (s *Store) Deactivate(ctx context.Context) {
	s.Flush(ctx)
	s.mu.Lock()
	s.stopTimerLocked()
	s.userID = ""
	s.mu.Unlock()
	s.widgets.Set(nil)
}

// Add appends a widget to the layout. The widget gets a fresh id; duplicates
// of the same type and target are allowed.
func (s *Store) Add(widget models.DashboardWidget) (models.DashboardWidget, error) {
	if err := widget.Validate(); err != nil {
		return models.DashboardWidget{}, err
	}
	widget.ID = uuid.NewString()

	s.widgets.Update(func(widgets []models.DashboardWidget) []models.DashboardWidget {
		return append(widgets, widget)
	})
	s.schedulePersist()
	return widget, nil
}

// Remove deletes a widget by id after the confirm callback approves it.
// A nil confirm removes unconditionally. Unknown ids are a no-op.
func (s *Store) Remove(id string, confirm ConfirmFunc) bool {
	var target *models.DashboardWidget
	for _, w := range s.widgets.Get() {
		if w.ID == id {
			copied := w
			target = &copied
			break
		}
	}
	if target == nil {
		return false
	}
	if confirm != nil && !confirm(*target) {
		return false
	}

	s.widgets.Update(func(widgets []models.DashboardWidget) []models.DashboardWidget {
		kept := widgets[:0]
		for _, w := range widgets {
			if w.ID != id {
				kept = append(kept, w)
			}
		}
		return kept
	})
	s.schedulePersist()
	return true
}

// Move shifts the widget at index from to index to. Out-of-range indexes are
// a no-op.
func (s *Store) Move(from, to int) {
	moved := false
	s.widgets.Update(func(widgets []models.DashboardWidget) []models.DashboardWidget {
		if from < 0 || from >= len(widgets) || to < 0 || to >= len(widgets) || from == to {
			return widgets
		}
		widget := widgets[from]
		widgets = append(widgets[:from], widgets[from+1:]...)
		widgets = append(widgets[:to], append([]models.DashboardWidget{widget}, widgets[to:]...)...)
		moved = true
		return widgets
	})
	if moved {
		s.schedulePersist()
	}
}

// Flush writes any pending layout change immediately.
func (s *Store) Flush(ctx context.Context) {
	s.mu.Lock()
	s.stopTimerLocked()
	userID := s.userID
	s.mu.Unlock()
	if userID == "" {
		return
	}
	s.write(ctx, userID, s.widgets.Get())
}

// schedulePersist captures the user and layout at schedule time. A timer that
// fires late, racing a user switch, then still writes the layout it was
// scheduled for instead of whatever is in memory by the time it runs.
func (s *Store) schedulePersist() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == "" {
		return
	}
	userID := s.userID
	snapshot := s.widgets.Get()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.write(context.Background(), userID, snapshot)
	})
}

func (s *Store) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Store) write(ctx context.Context, userID string, widgets []models.DashboardWidget) {
	if err := s.prefs.SetJSON(ctx, prefs.DashboardKey(userID), widgets); err != nil {
		s.logger.ErrorContext(ctx, "persisting dashboard layout failed",
			applog.FieldUserID, userID, applog.FieldError, err.Error())
		return
	}
	s.logger.DebugContext(ctx, "dashboard layout persisted",
		applog.FieldUserID, userID, "widget_count", len(widgets))
}
