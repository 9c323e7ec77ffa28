// Package align resolves alignment anchors to pixel offsets.
//
// An [Anchor] is either a literal coordinate or a keyword. The x axis knows
// left, right and center; the y axis knows top, bottom and center. Keywords
// are resolved against a container size and a content size, and any keyword
// an axis does not know centers the content.
package align

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Keywords understood by ResolveX and ResolveY.
const (
	Left   = "left"
	Right  = "right"
	Top    = "top"
	Bottom = "bottom"
	Center = "center"
)

// Anchor is a placement along one axis: a literal pixel offset or a keyword.
// The zero value is the literal 0.
type Anchor struct {
	keyword string
	value   float64
}

// Literal returns an anchor at the fixed offset v.
func Literal(v float64) Anchor { return Anchor{value: v} }

// Keyword returns a keyword anchor. The keyword is lower-cased.
func Keyword(k string) Anchor { return Anchor{keyword: strings.ToLower(k)} }

// IsKeyword reports whether a is a keyword anchor.
func (a Anchor) IsKeyword() bool { return a.keyword != "" }

// KeywordValue returns the keyword, or "" for literal anchors.
func (a Anchor) KeywordValue() string { return a.keyword }

// Value returns the literal offset, or 0 for keyword anchors.
func (a Anchor) Value() float64 { return a.value }

// Scaled multiplies a literal anchor by k. Keyword anchors are unchanged.
func (a Anchor) Scaled(k float64) Anchor {
	if a.IsKeyword() {
		return a
	}
	return Anchor{value: a.value * k}
}

// String renders the anchor as it would appear in a document.
func (a Anchor) String() string {
	if a.IsKeyword() {
		return a.keyword
	}
	return strconv.FormatFloat(a.value, 'f', -1, 64)
}

// ResolveX returns the integer x offset at which content of width content
// should be placed inside a container of width container.
//
// Literal anchors are truncated toward zero. left gives 0, right gives
// container-content, and center or any other keyword gives
// (container-content)/2 with integer division.
func ResolveX(a Anchor, container, content int) int {
	return resolve(a, container, content, Left, Right)
}

// ResolveY is ResolveX for the vertical axis, with top and bottom as the
// edge keywords. Horizontal keywords such as left center vertically.
func ResolveY(a Anchor, container, content int) int {
	return resolve(a, container, content, Top, Bottom)
}

func resolve(a Anchor, container, content int, start, end string) int {
	if !a.IsKeyword() {
		return int(a.value)
	}
	switch a.keyword {
	case start:
		return 0
	case end:
		return container - content
	default:
		return (container - content) / 2
	}
}

// MarshalJSON encodes literals as numbers and keywords as strings.
func (a Anchor) MarshalJSON() ([]byte, error) {
	if a.IsKeyword() {
		return json.Marshal(a.keyword)
	}
	return json.Marshal(a.value)
}

// UnmarshalJSON accepts a JSON number or a JSON string.
// Numeric strings such as "12" are treated as literals.
func (a *Anchor) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*a = Literal(x)
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			*a = Literal(f)
			return nil
		}
		if x == "" {
			return fmt.Errorf("empty alignment keyword")
		}
		*a = Keyword(x)
	default:
		return fmt.Errorf("alignment must be a number or keyword, got %s", string(data))
	}
	return nil
}

// ResolveBox resolves both axes of a w×h box inside a W×H container and
// returns its top-left corner.
func ResolveBox(x, y Anchor, w, h, containerW, containerH int) (int, int) {
	return ResolveX(x, containerW, w), ResolveY(y, containerH, h)
}
