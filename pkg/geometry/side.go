package geometry

import "fmt"

// Side identifies one of the four sides of a rectangle, or its center.
type Side string

const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideCenter Side = "center"
)

// Sides lists the four connectable sides in clockwise order starting at the top.
var Sides = []Side{SideTop, SideRight, SideBottom, SideLeft}

// ParseSide converts a string into a Side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideLeft, SideRight, SideTop, SideBottom, SideCenter:
		return Side(s), nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// Horizontal reports whether edges leave the side horizontally (left or right).
func (s Side) Horizontal() bool {
	return s == SideLeft || s == SideRight
}

// Vertical reports whether edges leave the side vertically (top or bottom).
func (s Side) Vertical() bool {
	return s == SideTop || s == SideBottom
}

// Normal returns the outward unit normal of the side. Center has none.
func (s Side) Normal() Point {
	switch s {
	case SideLeft:
		return Point{X: -1}
	case SideRight:
		return Point{X: 1}
	case SideTop:
		return Point{Y: -1}
	case SideBottom:
		return Point{Y: 1}
	}
	return Point{}
}

// Opposite returns the facing side.
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	case SideTop:
		return SideBottom
	case SideBottom:
		return SideTop
	}
	return SideCenter
}
