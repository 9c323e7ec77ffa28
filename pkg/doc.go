// Package pkg provides the core libraries for badgeforge badge compositing.
//
// # Overview
//
// Badgeforge turns a JSON badge document (a canvas plus a stack of
// background, shape, image and text layers) into a PNG or JPEG. The pkg
// directory is organized into four main areas:
//
//  1. [spec] - The badge document model and its JSON decoder
//  2. [render] - Geometry, alignment, rasterization and compositing
//  3. [pipeline] - Orchestration (decode → render → encode) with caching
//  4. Infrastructure - [assets], [cache], [store], [config], [errors]
//
// # Architecture
//
// The typical data flow through badgeforge:
//
//	JSON document
//	     ↓
//	[spec] (decode + validate every layer)
//	     ↓
//	[render/compose] (plan dynamic layout, paint layers in z order)
//	     ↓
//	[render/sink] (PNG, JPEG, base64 data URI)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, data, pipeline.Options{
//	    Assets: assets.NewResolver(assets.DirSource{Root: "assets"}),
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("badge.png", result.Artifact, 0o644)
//
// # Main Packages
//
// [render/geometry] - The fixed shape vocabulary (hexagon, circle, shield,
// rounded rectangle): horizontal extents at a given y, bounding boxes and
// vertex lists.
//
// [render/align] - Alignment keywords, percentages and pixel offsets resolved
// against a container.
//
// [render/raster] - Colors, gradients, masks and alpha compositing.
//
// [render/layer] - One painter per layer kind, including text wrapping.
//
// [render/compose] - Document rendering with supersampling and the dynamic
// placement plan for logo and text.
//
// [assets] - Image and font loading from directories, maps and URLs.
//
// [cache] - Encoded artifact caching (file, Redis, null).
//
// [store] - Named badge templates (memory, file, MongoDB) with builtins.
//
// [observability] - Hooks for render, cache and HTTP metrics.
//
// [spec]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/spec
// [render]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/render
// [render/compose]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/render/compose
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/render/sink
// [render/geometry]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/render/geometry
// [render/align]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/render/align
// [render/raster]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/render/raster
// [render/layer]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/render/layer
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/pipeline
// [assets]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/assets
// [cache]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/badgeforge/pkg/observability
package pkg
