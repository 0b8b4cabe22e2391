// Package timeline maps calendar time onto a horizontal pixel axis.
package timeline

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Scale is the label granularity shown on the timeline header.
type Scale string

const (
	ScaleHours  Scale = "Hours"
	ScaleDays   Scale = "Days"
	ScaleWeeks  Scale = "Weeks"
	ScaleMonths Scale = "Months"
)

// Zoom policy. Scale bands are selected on pixels-per-day alone:
// above HoursThreshold is Hours, above DaysThreshold is Days,
// above WeeksThreshold is Weeks, anything else is Months.
const (
	ZoomFactor = 1.2

	HoursThreshold = 50.0
	DaysThreshold  = 10.0
	WeeksThreshold = 3.0

	DefaultPixelsPerDay    = 18.0
	DefaultMinPixelsPerDay = 1.0
	DefaultMaxPixelsPerDay = 120.0
)

const (
	secondsPerHour = 3600.0
	secondsPerDay  = 86400.0
)

var (
	// ErrInvalidOptions indicates zoom settings outside the supported bands.
	ErrInvalidOptions = errors.New("invalid timeline options")
	// ErrInvalidRange indicates a viewport whose end precedes its start.
	ErrInvalidRange = errors.New("viewport end precedes start")
)

// ScaleFor returns the display scale for a zoom level.
func ScaleFor(pixelsPerDay float64) Scale {
	switch {
	case pixelsPerDay > HoursThreshold:
		return ScaleHours
	case pixelsPerDay > DaysThreshold:
		return ScaleDays
	case pixelsPerDay > WeeksThreshold:
		return ScaleWeeks
	default:
		return ScaleMonths
	}
}

// Options configures the zoom level and its clamp bounds.
type Options struct {
	PixelsPerDay    float64 `json:"pixels_per_day" yaml:"pixels_per_day"`
	MinPixelsPerDay float64 `json:"min_pixels_per_day" yaml:"min_pixels_per_day"`
	MaxPixelsPerDay float64 `json:"max_pixels_per_day" yaml:"max_pixels_per_day"`
}

// DefaultOptions returns the stock zoom configuration.
func DefaultOptions() Options {
	return Options{
		PixelsPerDay:    DefaultPixelsPerDay,
		MinPixelsPerDay: DefaultMinPixelsPerDay,
		MaxPixelsPerDay: DefaultMaxPixelsPerDay,
	}
}

// Validate checks that the clamp bounds sit inside the outermost scale bands,
// so both extremes are reachable and never flap at a boundary.
func (o Options) Validate() error {
	if o.MinPixelsPerDay <= 0 {
		return fmt.Errorf("%w: min pixels per day must be positive", ErrInvalidOptions)
	}
	if o.MinPixelsPerDay > WeeksThreshold {
		return fmt.Errorf("%w: min pixels per day must be at most %v", ErrInvalidOptions, WeeksThreshold)
	}
	if o.MaxPixelsPerDay <= HoursThreshold {
		return fmt.Errorf("%w: max pixels per day must exceed %v", ErrInvalidOptions, HoursThreshold)
	}
	if o.PixelsPerDay < o.MinPixelsPerDay || o.PixelsPerDay > o.MaxPixelsPerDay {
		return fmt.Errorf("%w: pixels per day %v outside [%v, %v]",
			ErrInvalidOptions, o.PixelsPerDay, o.MinPixelsPerDay, o.MaxPixelsPerDay)
	}
	return nil
}

// Viewport is the visible window of calendar time.
type Viewport struct {
	start         time.Time
	end           time.Time
	scale         Scale
	pixelsPerDay  float64
	pixelsPerHour float64
	minPPD        float64
	maxPPD        float64
}

// New creates a viewport spanning [start, end].
func New(start, end time.Time, opts Options) (*Viewport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	v := &Viewport{
		start:  start,
		end:    end,
		minPPD: opts.MinPixelsPerDay,
		maxPPD: opts.MaxPixelsPerDay,
	}
	v.setPixelsPerDay(opts.PixelsPerDay)
	return v, nil
}

func (v *Viewport) Start() time.Time           { return v.start }
func (v *Viewport) End() time.Time             { return v.end }
func (v *Viewport) Scale() Scale               { return v.scale }
func (v *Viewport) PixelsPerDay() float64      { return v.pixelsPerDay }
func (v *Viewport) PixelsPerHour() float64     { return v.pixelsPerHour }
func (v *Viewport) Bounds() (float64, float64) { return v.minPPD, v.maxPPD }

// SetRange moves the visible window without changing the zoom level.
func (v *Viewport) SetRange(start, end time.Time) error {
	if end.Before(start) {
		return ErrInvalidRange
	}
	v.start = start
	v.end = end
	return nil
}

// Fit moves the visible window to cover a and b in either order.
func (v *Viewport) Fit(a, b time.Time) {
	if b.Before(a) {
		a, b = b, a
	}
	v.start = a
	v.end = b
}

// SetPixelsPerDay jumps to a zoom level, clamped to the configured bounds.
func (v *Viewport) SetPixelsPerDay(ppd float64) {
	v.setPixelsPerDay(ppd)
}

// ZoomIn magnifies the timeline by ZoomFactor.
func (v *Viewport) ZoomIn() {
	v.setPixelsPerDay(v.pixelsPerDay * ZoomFactor)
}

// ZoomOut shrinks the timeline by ZoomFactor.
func (v *Viewport) ZoomOut() {
	v.setPixelsPerDay(v.pixelsPerDay / ZoomFactor)
}

// setPixelsPerDay is the only writer of the zoom fields: pixels-per-hour and
// the scale are always recomputed from the new pixels-per-day value.
func (v *Viewport) setPixelsPerDay(ppd float64) {
	v.pixelsPerDay = math.Min(math.Max(ppd, v.minPPD), v.maxPPD)
	v.pixelsPerHour = v.pixelsPerDay / 24
	v.scale = ScaleFor(v.pixelsPerDay)
}

// ToPixels returns the x offset of dt from the viewport start. Elapsed time is
// measured in whole seconds.
func (v *Viewport) ToPixels(dt time.Time) float64 {
	secs := float64(int64(dt.Sub(v.start) / time.Second))
	if v.scale == ScaleHours {
		return secs / secondsPerHour * v.pixelsPerHour
	}
	return secs / secondsPerDay * v.pixelsPerDay
}

// maxOffsetSeconds is the largest whole-second offset a time.Duration holds,
// about 292 years.
const maxOffsetSeconds = float64(math.MaxInt64 / int64(time.Second))

// FromPixels is the inverse of ToPixels, rounded to the nearest second.
// Offsets beyond the range of time.Duration saturate, as they do in ToPixels.
func (v *Viewport) FromPixels(x float64) time.Time {
	var secs float64
	if v.scale == ScaleHours {
		secs = x / v.pixelsPerHour * secondsPerHour
	} else {
		secs = x / v.pixelsPerDay * secondsPerDay
	}
	if math.IsNaN(secs) {
		secs = 0
	}
	secs = math.Min(math.Max(math.Round(secs), -maxOffsetSeconds), maxOffsetSeconds)
	return v.start.Add(time.Duration(secs) * time.Second)
}

// TotalWidth is the pixel width of the whole visible range.
func (v *Viewport) TotalWidth() float64 {
	return v.ToPixels(v.end)
}
