// Package imaging connects band sequences to real image files and to the image
// operations the server exposes.
//
// Decoder is the concrete sequence.BandLoader: it probes and decodes PNG, JPEG,
// GIF, TIFF and BMP files, and wraps each decoded image in a Band that reports
// samples in the file's native depth. Composite turns an open Sequence into an
// image.Image so the operations below work over the whole stack of bands:
//
//   - SampleColor, SampleColorsMulti and DominantColors read colors
//   - Crop renders a region as base64 PNG, Export writes it to disk
//   - MeasureCalibrated measures between points in pixels and physical units
//   - CompareRegions diffs two regions, typically in neighbouring bands
//   - GridOverlay draws a global grid and band boundaries over a region
//   - EdgeDetect maps edges in a region, such as seams between bands
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left of band 0.
// Y runs down through the bands in order, so a Composite's rows are the global
// rows of the sequence. For regions, (x1,y1) is inclusive and (x2,y2) is
// exclusive.
//
// # Error Handling
//
// image.Image cannot report read failures, so operations that read through a
// Composite check its Err after reading and return any band failure as their
// own error.
package imaging
