// Package thumbnail produces bounded-size JPEG previews of decoded images and
// wraps them as data URLs the shell can drop straight into an <img> tag.
package thumbnail
