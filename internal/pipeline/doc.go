// Package pipeline implements the viewer's command set on top of the decoder,
// image cache, thumbnail generator, histogram engine, and exporter.
//
// A Service decodes each file at most once while it is unchanged on disk:
// a path index maps paths to cache handles along with the size and
// modification time seen at decode time, and concurrent requests for the
// same path share a single decode.
package pipeline
