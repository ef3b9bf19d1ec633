package texture

import (
	"fmt"
	"strings"
)

// ArrayText renders a raw byte stream as a C source fragment: a
// "// size = N" comment (N is the number of size-wide elements, after
// zero-padding the final element if the stream isn't an exact multiple of
// size) followed by a `<ctype> name[] = { ... };` declaration, 16/size
// values per line. This is the Go equivalent of the original converter's
// to_c_def, operating on the already-encoded byte stream rather than a
// pre-formatted list of hex strings.
func ArrayText(name string, data []byte, size Size) string {
	elemSize := int(size)
	count := (len(data) + elemSize - 1) / elemSize
	perLine := 16 / elemSize
	if perLine < 1 {
		perLine = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// size = %d\n", count)
	fmt.Fprintf(&b, "%s %s[] = {\n", size.cType(), name)

	line := make([]string, 0, perLine)
	for i := 0; i < count; i++ {
		var v uint64
		for j := 0; j < elemSize; j++ {
			pos := i*elemSize + j
			var byteVal byte
			if pos < len(data) {
				byteVal = data[pos]
			}
			v = v<<8 | uint64(byteVal)
		}
		line = append(line, formatHex(v, elemSize))

		if len(line) == perLine || i == count-1 {
			fmt.Fprintf(&b, "\t%s,\n", strings.Join(line, ", "))
			line = line[:0]
		}
	}

	b.WriteString("};\n")
	return b.String()
}

// formatHex renders v as an uppercase, zero-padded hex literal wide enough
// for elemSize bytes, e.g. 0X00FF for a 2-byte element.
func formatHex(v uint64, elemSize int) string {
	return fmt.Sprintf("0X%0*X", elemSize*2, v)
}

// ArrayTextPair renders the palette/index pair a CI4/CI8 conversion
// produces: a U16 palette array followed by a U8 index array, matching the
// original converter's fixed CI output sizing.
func ArrayTextPair(palName string, pal []byte, idxName string, idx []byte) string {
	return ArrayText(palName, pal, SizeU16) + "\n" + ArrayText(idxName, idx, SizeU8)
}
