package fallback

import (
	"fmt"
	"strings"

	"tryon-canvas-server/modules/common/model"
)

// Demo placeholders returned when no provider credential is configured.
const (
	SingleResultURL = "https://images.unsplash.com/photo-1595950653106-6c9ebd614d3a?w=512&h=768&fit=crop"
	MultiResultURL  = "https://images.unsplash.com/photo-1529139574466-a303027c1d8b?w=512&h=768&fit=crop"

	DemoContentType      = "image/jpeg"
	DemoWidth            = 512
	DemoHeight           = 768
	DemoInferenceSeconds = 1.5

	// ProductPlaceholder is a white 400x400 "[Product Image]" card used by garment generation.
	ProductPlaceholder = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iNDAwIiBoZWlnaHQ9IjQwMCIgdmlld0JveD0iMCAwIDQwMCA0MDAiIGZpbGw9Im5vbmUiIHhtbG5zPSJodHRwOi8vd3d3LnczLm9yZy8yMDAwL3N2ZyI+CjxyZWN0IHdpZHRoPSI0MDAiIGhlaWdodD0iNDAwIiBmaWxsPSJ3aGl0ZSIvPgo8dGV4dCB4PSIyMDAiIHk9IjIwMCIgZm9udC1mYW1pbHk9IkFyaWFsIiBmb250LXNpemU9IjI0IiBmaWxsPSIjY2NjIiB0ZXh0LWFuY2hvcj0ibWlkZGxlIiBhbGlnbm1lbnQtYmFzZWxpbmU9Im1pZGRsZSI+CiAgICBbUHJvZHVjdCBJbWFnZV0KPC90ZXh0Pgo8L3N2Zz4="
)

// DemoImage returns the fixed placeholder output for the given url.
func DemoImage(url string) model.ImageOutput {
	return model.ImageOutput{
		URL:         url,
		ContentType: DemoContentType,
		Width:       DemoWidth,
		Height:      DemoHeight,
	}
}

// BatchResultURL returns a stable per-task placeholder so demo batches show distinct thumbnails.
func BatchResultURL(index int) string {
	return fmt.Sprintf("https://images.unsplash.com/photo-%d-6c9ebd614d3a?w=512&h=768&fit=crop", 1595950653106+index)
}

// SafeString returns a trimmed string or the provided fallback.
func SafeString(value interface{}, fallback string) string {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s != "" {
			return s
		}
	}
	return fallback
}
