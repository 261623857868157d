package capture

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

const mirrorJPEGQuality = 80

// mirrorFrame flips a JPEG frame horizontally so the stored capture matches
// the mirrored on-screen preview the user aligned against.
func mirrorFrame(frame []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	flipped := imaging.FlipH(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flipped, &jpeg.Options{Quality: mirrorJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
