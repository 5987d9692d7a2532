// Package imagery holds the decoded-image payload passed between the image
// fetcher, the HTTP transport, and the embedding provider.
package imagery

// Image is a validated, still-encoded image payload. The raw bytes are kept
// as received so the embedding provider sees the original encoding; Width and
// Height come from decoding the header during validation.
type Image struct {
	data   []byte
	mime   string
	width  int
	height int
}

// New creates an image payload.
func New(data []byte, mime string, width, height int) Image {
	return Image{data: data, mime: mime, width: width, height: height}
}

// Data returns the encoded image bytes.
func (i Image) Data() []byte { return i.data }

// MIME returns the detected content type (e.g. "image/jpeg").
func (i Image) MIME() string { return i.mime }

// Width returns the pixel width from the decoded header.
func (i Image) Width() int { return i.width }

// Height returns the pixel height from the decoded header.
func (i Image) Height() int { return i.height }

// Empty reports whether the payload holds no bytes.
func (i Image) Empty() bool { return len(i.data) == 0 }
