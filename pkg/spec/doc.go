// Package spec defines the declarative badge document and decodes it from JSON.
//
// # Overview
//
// A [Document] is a canvas descriptor plus an ordered list of layers. Layers
// are a closed set of variants implementing [Layer]:
//
//   - [BackgroundLayer]: a solid or gradient fill over the whole canvas
//   - [ShapeLayer]: a hexagon, circle, shield or rounded rectangle with fill and border
//   - [ImageLayer]: a bitmap looked up by path, sized and positioned on the canvas
//   - [TextLayer]: a wrapped, aligned block of text
//
// Documents are immutable once decoded. Rendering never writes back into a
// document, so one document may be rendered by several goroutines at once.
//
// # JSON Format
//
//	{
//	  "canvas": {"width": 600, "height": 600, "bg": "white", "scale_factor": 2},
//	  "layers": [
//	    {"type": "background", "mode": "solid", "color": "#FFFFFF"},
//	    {"type": "shape", "shape": "hexagon", "params": {"radius": 250},
//	     "fill": {"mode": "gradient", "start_color": "#FFD700", "end_color": "#FF4500"},
//	     "border": {"color": "#800000", "width": 6}, "z": 10},
//	    {"type": "logo", "path": "logos/acme.png", "size": {"dynamic": true},
//	     "position": {"x": "center", "y": "dynamic"}, "z": 20},
//	    {"type": "text", "text": "Spark Challenge", "font": {"path": "fonts/Arial.ttf", "size": 45},
//	     "align": {"x": "center", "y": "dynamic"}, "wrap": {"dynamic": true}, "z": 30}
//	  ]
//	}
//
// Type tags are accepted in two spellings: "background" or "BackgroundLayer",
// "shape" or "ShapeLayer", "image" or "ImageLayer", "text" or "TextLayer".
// "logo" and "LogoLayer" are aliases for an image layer.
//
// # Placement
//
// Image positions and text alignment are given per axis as an [Axis]: a
// number, a keyword (left, right, top, bottom, center) or "dynamic". A
// dynamic axis is computed from the geometry of the first shape layer when
// the document is rendered. Only the y axis of images and text, and the wrap
// width of text, may be dynamic; anything else is rejected while decoding.
//
// # Defaults
//
// Omitted fields take defaults computed against the nominal canvas size:
//
//   - canvas: 600×600, white background, scale factor 1
//   - hexagon radius: min(width, height)/2 - 20
//   - circle margin: 50
//   - shield: margin 56, corner radius 56, tip height 110, tip inset 36
//   - rounded_rect: 200×40, corner radius 20, centered on the canvas
//   - image: natural size, centered, opacity 1
//   - dynamic image size: max 280×120, upscale capped at 2
//   - text: font size 24, color #000000, centered, line gap 6
//
// # Errors
//
// Decoding fails with a structured error from the errors package:
// UNKNOWN_LAYER for an unknown type tag, UNKNOWN_SHAPE for an unknown shape
// kind, INVALID_PATH for unsafe asset paths and INVALID_SPEC for every other
// malformed value. No partial document is returned.
package spec
