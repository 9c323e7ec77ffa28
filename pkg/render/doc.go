// Package render groups the badge rendering stages.
//
// # Overview
//
// A badge is rendered bottom-up through these subpackages:
//
//   - [geometry]: shape extents, bounding boxes and vertices
//   - [align]: alignment anchors resolved to pixel offsets
//   - [raster]: colors, gradients, masks and compositing
//   - [layer]: background, shape, image and text painters
//   - [compose]: supersampled document rendering and dynamic placement
//   - [sink]: PNG, JPEG and data URI encoding
//
// [compose] is the entry point:
//
//	img, err := compose.RenderDocument(ctx, doc, compose.WithAssets(resolver))
//	png, err := sink.Encode(img, sink.PNG)
//
// [geometry]: github.com/matzehuels/badgeforge/pkg/render/geometry
// [align]: github.com/matzehuels/badgeforge/pkg/render/align
// [raster]: github.com/matzehuels/badgeforge/pkg/render/raster
// [layer]: github.com/matzehuels/badgeforge/pkg/render/layer
// [compose]: github.com/matzehuels/badgeforge/pkg/render/compose
// [sink]: github.com/matzehuels/badgeforge/pkg/render/sink
package render
