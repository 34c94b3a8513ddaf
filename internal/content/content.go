// Package content loads file contents as text, falling back through legacy
// encodings when the bytes are not valid UTF-8.
package content

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// UTF8 is the encoding name reported for input that was valid UTF-8.
const UTF8 = "UTF-8"

// Decoded is the text of one file.
type Decoded struct {
	Text      string
	LineCount int
	// Encoding names the encoding that produced Text. A "(lossy)" suffix
	// means no encoding decoded cleanly.
	Encoding string
}

type candidate struct {
	name string
	enc  encoding.Encoding
}

// ladder is tried in order after UTF-8; the first clean decode wins. The order
// decides which ambiguous inputs get which reading, so it must not change.
var ladder = []candidate{
	{"GBK", simplifiedchinese.GBK},
	{"GB18030", simplifiedchinese.GB18030},
	{"Big5", traditionalchinese.Big5},
	{"UTF-16LE", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{"UTF-16BE", unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
	{"Shift_JIS", japanese.ShiftJIS},
	{"EUC-KR", korean.EUCKR},
}

var fallback = candidate{"GBK", simplifiedchinese.GBK}

// Ladder returns the names of the fallback encodings in the order they are tried.
func Ladder() []string {
	names := make([]string, len(ladder))
	for i, c := range ladder {
		names[i] = c.name
	}
	return names
}

// Load reads the file at path and decodes it. Only read failures are errors;
// undecodable bytes degrade to a lossy GBK reading.
func Load(path string) (Decoded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Decoded{}, fmt.Errorf("read file failed: %w", err)
	}
	return Decode(data), nil
}

// Decode converts raw bytes to text.
func Decode(data []byte) Decoded {
	return decodeWith(data, ladder)
}

func decodeWith(data []byte, candidates []candidate) Decoded {
	if utf8.Valid(data) {
		return newDecoded(string(data), UTF8)
	}
	for _, c := range candidates {
		if text, ok := decodeClean(c.enc, data); ok {
			return newDecoded(text, bomLabel(data, c.name))
		}
	}
	text, _ := fallback.enc.NewDecoder().Bytes(data)
	return newDecoded(string(text), fallback.name+" (lossy)")
}

// bomLabel names the byte order a UTF-16 decoder actually used. The UTF-16
// candidates follow a BOM over their own default.
func bomLabel(data []byte, name string) string {
	if !strings.HasPrefix(name, "UTF-16") {
		return name
	}
	switch {
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return "UTF-16BE"
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return "UTF-16LE"
	}
	return name
}

// decodeClean reports ok only when no byte sequence was malformed. The x/text
// decoders substitute U+FFFD for bad input instead of failing, so a
// replacement rune in the output marks a decode error.
func decodeClean(enc encoding.Encoding, data []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

func newDecoded(text, enc string) Decoded {
	return Decoded{Text: text, LineCount: LineCount(text), Encoding: enc}
}

// LineCount counts lines the way a reader would: "a\nb" and "a\nb\n" both
// have two lines and the empty string has none.
func LineCount(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
