package pipeline

import (
	"errors"
	"io/fs"

	"image-viewer/internal/export"
	"image-viewer/internal/imagecache"
	"image-viewer/internal/media"
	"image-viewer/internal/thumbnail"
)

// Error kinds reported to callers alongside the message.
const (
	KindDecode          = "decode"
	KindEncode          = "encode"
	KindExport          = "export"
	KindNotFound        = "not_found"
	KindInvalidArgument = "invalid_argument"
	KindInternal        = "internal"
)

var (
	errEmptyPath        = &thumbnail.InvalidArgumentError{Argument: "path", Reason: "must not be empty"}
	errEmptyDestination = &thumbnail.InvalidArgumentError{Argument: "destination", Reason: "must not be empty"}
)

// Kind classifies err for the command boundary. It returns "" for nil.
func Kind(err error) string {
	if err == nil {
		return ""
	}

	var (
		decodeErr *media.DecodeError
		encodeErr *thumbnail.EncodeError
		exportErr *export.ExportError
	)

	switch {
	case thumbnail.IsInvalidArgument(err):
		return KindInvalidArgument
	case errors.Is(err, imagecache.ErrNotFound):
		return KindNotFound
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &encodeErr):
		return KindEncode
	case errors.As(err, &exportErr):
		return KindExport
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	default:
		return KindInternal
	}
}
