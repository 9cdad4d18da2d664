package tray

import (
	"bytes"
	"encoding/binary"
)

// wrapICO packs one PNG image into an ICO container. Windows accepts PNG
// payloads in icon files since Vista.
func wrapICO(pngData []byte, side int) []byte {
	const headerSize, entrySize = 6, 16
	dim := byte(side)
	if side >= 256 {
		dim = 0
	}
	var buf bytes.Buffer
	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	buf.Write([]byte{dim, dim, 0, 0})
	_ = binary.Write(&buf, binary.LittleEndian, [2]uint16{1, 32})
	_ = binary.Write(&buf, binary.LittleEndian, [2]uint32{uint32(len(pngData)), headerSize + entrySize})
	buf.Write(pngData)
	return buf.Bytes()
}
