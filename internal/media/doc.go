// Package media decodes image files into a single in-memory representation.
//
// Every decoded image is normalized to non-premultiplied RGBA (*image.NRGBA)
// so downstream consumers (thumbnails, histograms, the cache) never switch
// on pixel layout. EXIF orientation is applied at decode time.
//
// Supported containers:
//   - JPEG, PNG, GIF (first frame) via the standard library
//   - WebP, BMP, TIFF via golang.org/x/image
//   - anything libvips can read, when InitVips has been called
//
// FormatLabel derives the user-facing format string from a file name and is
// independent of the decoded container.
package media
