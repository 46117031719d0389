/*
Package workers sizes worker pools from the CPUs actually available to the
process.

runtime.NumCPU reports host CPUs, while runtime.GOMAXPROCS follows cgroup CPU
limits (Go 1.19+). Batch thumbnail generation is CPU-bound (decode, Lanczos
resampling, JPEG encoding), so it should run one worker per usable CPU:

	import "image-viewer/internal/workers"

	n := workers.ForBatch(len(paths), 8) // <= 8, <= len(paths), >= 1

Set THUMBNAIL_WORKERS to pin the count, e.g. to keep a desktop responsive
while a large folder is opened:

	THUMBNAIL_WORKERS=2 image-viewer

All functions are safe for concurrent use.
*/
package workers
