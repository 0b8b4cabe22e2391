package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ZoomDirection selects ZoomIn or ZoomOut.
type ZoomDirection string

const (
	ZoomIn  ZoomDirection = "in"
	ZoomOut ZoomDirection = "out"
)

// Zoom steps the session's viewport one zoom factor in or out. Zooming is a
// view change and is not recorded in the undo history.
func (s *Service) Zoom(ctx context.Context, tenantID, sessionID string, dir ZoomDirection) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ed, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	switch dir {
	case ZoomIn:
		ed.viewport.ZoomIn()
	case ZoomOut:
		ed.viewport.ZoomOut()
	default:
		return nil, ErrInvalidInput
	}
	return ed.state(sess), nil
}

// SetPixelsPerDay jumps the session's viewport to a zoom level.
func (s *Service) SetPixelsPerDay(ctx context.Context, tenantID, sessionID string, ppd float64) (*State, error) {
	if ppd <= 0 {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ed, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	ed.viewport.SetPixelsPerDay(ppd)
	return ed.state(sess), nil
}

// Layout positions the visible tasks on the session's timeline in grouped
// order.
func (s *Service) Layout(ctx context.Context, tenantID, sessionID string) (*Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ed, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	vp := ed.viewport
	parents := make(map[uuid.UUID]bool)
	for _, t := range ed.proj.Tasks {
		if t.HasParent() {
			parents[t.ParentID.UUID] = true
		}
	}
	hidden := make(map[uuid.UUID]bool)
	for _, t := range ed.proj.Tasks {
		if t.Collapsed && parents[t.ID] {
			hidden[t.ID] = true
		}
	}

	layout := &Layout{
		Start:         vp.Start(),
		End:           vp.End(),
		Scale:         vp.Scale(),
		PixelsPerDay:  vp.PixelsPerDay(),
		PixelsPerHour: vp.PixelsPerHour(),
		TotalWidth:    vp.TotalWidth(),
		Bars:          []Bar{},
	}
	for _, t := range ed.proj.SortGrouped() {
		if t.HasParent() && hidden[t.ParentID.UUID] {
			continue
		}
		x := vp.ToPixels(t.Start)
		bar := Bar{
			Task:     t,
			Row:      len(layout.Bars),
			IsParent: parents[t.ID],
			X:        x,
			Width:    vp.ToPixels(t.End) - x,
		}
		if t.HasParent() {
			bar.Indent = 1
		}
		layout.Bars = append(layout.Bars, bar)
	}
	return layout, nil
}

// Position converts a datetime to an x offset on the session's timeline.
func (s *Service) Position(ctx context.Context, tenantID, sessionID string, t time.Time) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ed, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return 0, err
	}
	return ed.viewport.ToPixels(t), nil
}

// DatetimeAt converts an x offset on the session's timeline to a datetime.
func (s *Service) DatetimeAt(ctx context.Context, tenantID, sessionID string, x float64) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ed, err := s.load(ctx, tenantID, sessionID)
	if err != nil {
		return time.Time{}, err
	}
	return ed.viewport.FromPixels(x), nil
}
