package runtime

import (
	"encoding/json"
	"fmt"
	"math"
)

// PhysicalSize is a size in device pixels.
type PhysicalSize struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// LogicalSize is a size in scale-independent pixels.
type LogicalSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PhysicalPosition is a position in device pixels.
type PhysicalPosition struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// LogicalPosition is a position in scale-independent pixels.
type LogicalPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (s LogicalSize) ToPhysical(scale float64) PhysicalSize {
	return PhysicalSize{
		Width:  uint32(math.Round(s.Width * scale)),
		Height: uint32(math.Round(s.Height * scale)),
	}
}

func (s PhysicalSize) ToLogical(scale float64) LogicalSize {
	return LogicalSize{Width: float64(s.Width) / scale, Height: float64(s.Height) / scale}
}

func (p LogicalPosition) ToPhysical(scale float64) PhysicalPosition {
	return PhysicalPosition{
		X: int32(math.Round(p.X * scale)),
		Y: int32(math.Round(p.Y * scale)),
	}
}

func (p PhysicalPosition) ToLogical(scale float64) LogicalPosition {
	return LogicalPosition{X: float64(p.X) / scale, Y: float64(p.Y) / scale}
}

const (
	unitPhysical = "Physical"
	unitLogical  = "Logical"
)

// Size is either physical or logical. Exactly one field is set.
type Size struct {
	Physical *PhysicalSize
	Logical  *LogicalSize
}

func NewPhysicalSize(w, h uint32) Size {
	return Size{Physical: &PhysicalSize{Width: w, Height: h}}
}

func NewLogicalSize(w, h float64) Size {
	return Size{Logical: &LogicalSize{Width: w, Height: h}}
}

func NewPhysicalPosition(x, y int32) Position {
	return Position{Physical: &PhysicalPosition{X: x, Y: y}}
}

func NewLogicalPosition(x, y float64) Position {
	return Position{Logical: &LogicalPosition{X: x, Y: y}}
}

// ToPhysical resolves s at the given scale factor.
func (s Size) ToPhysical(scale float64) PhysicalSize {
	switch {
	case s.Physical != nil:
		return *s.Physical
	case s.Logical != nil:
		return s.Logical.ToPhysical(scale)
	}
	return PhysicalSize{}
}

type taggedUnit struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON encodes as {"type":"Physical"|"Logical","data":{...}}.
func (s Size) MarshalJSON() ([]byte, error) {
	switch {
	case s.Physical != nil:
		return marshalTagged(unitPhysical, s.Physical)
	case s.Logical != nil:
		return marshalTagged(unitLogical, s.Logical)
	}
	return nil, fmt.Errorf("size has no value")
}

func (s *Size) UnmarshalJSON(b []byte) error {
	var t taggedUnit
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	*s = Size{}
	switch t.Type {
	case unitPhysical:
		s.Physical = &PhysicalSize{}
		return json.Unmarshal(t.Data, s.Physical)
	case unitLogical:
		s.Logical = &LogicalSize{}
		return json.Unmarshal(t.Data, s.Logical)
	}
	return fmt.Errorf("unknown size type %q", t.Type)
}

// Position is either physical or logical. Exactly one field is set.
type Position struct {
	Physical *PhysicalPosition
	Logical  *LogicalPosition
}

// ToPhysical resolves p at the given scale factor.
func (p Position) ToPhysical(scale float64) PhysicalPosition {
	switch {
	case p.Physical != nil:
		return *p.Physical
	case p.Logical != nil:
		return p.Logical.ToPhysical(scale)
	}
	return PhysicalPosition{}
}

func (p Position) MarshalJSON() ([]byte, error) {
	switch {
	case p.Physical != nil:
		return marshalTagged(unitPhysical, p.Physical)
	case p.Logical != nil:
		return marshalTagged(unitLogical, p.Logical)
	}
	return nil, fmt.Errorf("position has no value")
}

func (p *Position) UnmarshalJSON(b []byte) error {
	var t taggedUnit
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	*p = Position{}
	switch t.Type {
	case unitPhysical:
		p.Physical = &PhysicalPosition{}
		return json.Unmarshal(t.Data, p.Physical)
	case unitLogical:
		p.Logical = &LogicalPosition{}
		return json.Unmarshal(t.Data, p.Logical)
	}
	return fmt.Errorf("unknown position type %q", t.Type)
}

func marshalTagged(unit string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taggedUnit{Type: unit, Data: data})
}

// Monitor describes a display.
type Monitor struct {
	Name        *string          `json:"name"`
	Size        PhysicalSize     `json:"size"`
	Position    PhysicalPosition `json:"position"`
	ScaleFactor float64          `json:"scaleFactor"`
}
