package handlers

import (
	"time"

	"image-viewer/internal/memory"
	"image-viewer/internal/pipeline"
)

// maxRequestBody bounds JSON command bodies.
const maxRequestBody = 1 << 20

type Handlers struct {
	svc       *pipeline.Service
	monitor   *memory.Monitor
	startTime time.Time
}

// New creates handlers over svc. monitor may be nil.
func New(svc *pipeline.Service, monitor *memory.Monitor) *Handlers {
	return &Handlers{
		svc:       svc,
		monitor:   monitor,
		startTime: time.Now(),
	}
}
