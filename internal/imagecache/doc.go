// Package imagecache keeps decoded images in memory under opaque handles so
// one decode can serve thumbnails, histograms, and later lookups.
//
// Handles are ULIDs and are never reused while the process runs. Entries are
// immutable once inserted. Residency is bounded by a byte budget and an
// optional entry budget with least-recently-used eviction; a zero budget
// disables that bound.
package imagecache
