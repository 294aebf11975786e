// Package imagedata handles images embedded in node data as data URIs.
//
// Pasted or uploaded images are stored inline in the document as
// "data:<mime>;base64,<payload>" so a saved diagram is a single file.
// [FromBytes] validates and normalizes raw image bytes into such a URI;
// [Decode] and [Thumbnail] turn a URI back into pixels for rendering.
package imagedata

import (
	"bytes"
	"encoding/base64"
	"image"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/costgraph/pkg/errors"
)

// Limits applied to pasted images.
const (
	MaxBytes     = 8 << 20 // raw upload size
	MaxDimension = 1024    // longest side kept after normalization
)

const (
	prefix       = "data:"
	base64Marker = ";base64,"
)

// Payload is a parsed data URI.
type Payload struct {
	MIME string
	Data []byte
}

// Parse splits a base64 data URI into its MIME type and payload.
func Parse(uri string) (Payload, error) {
	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok {
		return Payload{}, errors.New(errors.ErrCodeImageDecode, "not a data URI")
	}
	mime, enc, ok := strings.Cut(rest, base64Marker)
	if !ok {
		return Payload{}, errors.New(errors.ErrCodeImageDecode, "data URI is not base64 encoded")
	}
	if !strings.HasPrefix(mime, "image/") {
		return Payload{}, errors.New(errors.ErrCodeImageDecode, "unsupported media type %q", mime)
	}
	data, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return Payload{}, errors.Wrap(errors.ErrCodeImageDecode, err, "decode base64")
	}
	return Payload{MIME: mime, Data: data}, nil
}

// Encode builds a data URI for data of the given MIME type.
func Encode(mime string, data []byte) string {
	return prefix + mime + base64Marker + base64.StdEncoding.EncodeToString(data)
}

// FromBytes turns raw image bytes into a data URI.
//
// The bytes must decode as an image. Images larger than MaxDimension on
// either side are scaled down and re-encoded as PNG; smaller images keep
// their original encoding.
func FromBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New(errors.ErrCodeImageDecode, "empty image")
	}
	if len(data) > MaxBytes {
		return "", errors.New(errors.ErrCodeImageDecode, "image too large (%d bytes, max %d)", len(data), MaxBytes)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeImageDecode, err, "decode image")
	}

	b := img.Bounds()
	if b.Dx() <= MaxDimension && b.Dy() <= MaxDimension {
		return Encode(http.DetectContentType(data), data), nil
	}

	var buf bytes.Buffer
	scaled := imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	if err := imaging.Encode(&buf, scaled, imaging.PNG); err != nil {
		return "", errors.Wrap(errors.ErrCodeImageDecode, err, "encode image")
	}
	return Encode("image/png", buf.Bytes()), nil
}

// Decode decodes the image held in a data URI.
func Decode(uri string) (image.Image, error) {
	p, err := Parse(uri)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageDecode, err, "decode %s", p.MIME)
	}
	return img, nil
}

// Thumbnail decodes uri and scales it to fit within w x h, keeping the
// aspect ratio.
func Thumbnail(uri string, w, h int) (image.Image, error) {
	img, err := Decode(uri)
	if err != nil {
		return nil, err
	}
	return imaging.Fit(img, w, h, imaging.Linear), nil
}
