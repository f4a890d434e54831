package domain

import "encoding/base64"

// MimeTypePNG is the content type of every generated reply image.
const MimeTypePNG = "image/png"

// ImageEntry describes one background picture available for compositing.
// Title is the file name before the first dot, Format the lowercased extension
// (empty when the file has none) and Location an opaque handle resolved by a catalog opener.
type ImageEntry struct {
	Title    string `json:"title"`
	Format   string `json:"format"`
	Location string `json:"location"`
}

// RenderSpec bundles everything the composer needs for a single reply.
type RenderSpec struct {
	Background ImageEntry
	Sentence   string
	Author     string
}

// EncodedImage is the composed reply, ready to be handed to the messaging gateway.
type EncodedImage struct {
	MimeType string `json:"mime_type"`
	Payload  string `json:"data"` // base64, standard encoding
}

// NewEncodedImage base64-encodes raw image bytes.
// Parameters:
//   - mimeType: content type of data.
//   - data: encoded image bytes.
// Returns:
//   - EncodedImage: payload wrapped with its content type.
func NewEncodedImage(mimeType string, data []byte) EncodedImage {
	return EncodedImage{
		MimeType: mimeType,
		Payload:  base64.StdEncoding.EncodeToString(data),
	}
}

// Bytes decodes the payload back into raw image bytes.
func (e EncodedImage) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(e.Payload)
}

// DataURI renders the image as a data URI (data:image/png;base64,...).
func (e EncodedImage) DataURI() string {
	return "data:" + e.MimeType + ";base64," + e.Payload
}
