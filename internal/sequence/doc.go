// Package sequence assembles an ordered list of image files into one virtual,
// randomly addressable composite image.
//
// Each file is a band: a horizontal slice of rows that is stacked below the
// previous file in list order. Consumers read pixels by global coordinate and
// never see band boundaries, band sizes, or which bands are resident.
//
// # Coordinate System
//
// Coordinates are 0-based with (0,0) at the top-left of band 0:
//   - X: column, shared by every band (all bands have the same width)
//   - Y: global row; band i covers rows [offset(i), offset(i)+height(i))
//   - Channel: 0 .. Channels-1, shared by every band
//
// Coordinates outside the aggregate shape are reported as ErrOutOfRange.
// Nothing is clamped.
//
// # Decoding
//
// The package does not decode files itself. A BandLoader supplies two
// operations: a cheap header probe, used by Open to learn each band's shape,
// and a full decode, used lazily the first time a band is read.
//
// # Caching
//
// Decoded bands are kept in a least-recently-used cache bounded by band count.
// At most one decode per band is in flight at any moment; concurrent readers of
// the same band wait for and share that result. Failed decodes are not cached,
// so a later read retries.
//
// # Thread Safety
//
// A Sequence is safe for concurrent use. Its band list and shapes never change
// after Open; the band cache is the only mutable shared state.
package sequence
