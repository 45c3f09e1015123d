package render

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"
)

// pixelsPerMeter300DPI is 300 dots per inch expressed in the pHYs chunk's
// unit (pixels per meter): 300 / 0.0254, rounded.
const pixelsPerMeter300DPI = 11811

// EncodePNG writes the image as a PNG carrying a 300-dpi physical pixel
// density. The standard encoder emits no pHYs chunk, so one is spliced in
// directly after IHDR.
func EncodePNG(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}

	data := buf.Bytes()
	// 8-byte signature + 4 length + 4 type + 13 IHDR data + 4 CRC.
	const ihdrEnd = 33
	if len(data) < ihdrEnd {
		return fmt.Errorf("encoding png: truncated stream")
	}

	if _, err := w.Write(data[:ihdrEnd]); err != nil {
		return err
	}
	if _, err := w.Write(physChunk()); err != nil {
		return err
	}
	_, err := w.Write(data[ihdrEnd:])
	return err
}

func physChunk() []byte {
	payload := make([]byte, 9)
	binary.BigEndian.PutUint32(payload[0:4], pixelsPerMeter300DPI)
	binary.BigEndian.PutUint32(payload[4:8], pixelsPerMeter300DPI)
	payload[8] = 1 // unit is meters

	chunk := make([]byte, 0, 21)
	chunk = binary.BigEndian.AppendUint32(chunk, 9)
	chunk = append(chunk, "pHYs"...)
	chunk = append(chunk, payload...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))
	return chunk
}
