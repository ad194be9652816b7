package sidecar

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/viralesveras/lora-tag-helper/pkg/utils"
)

// ParametersKey is the text chunk Stable Diffusion web UIs store generation settings in.
const ParametersKey = "parameters"

const maxTextChunk = 1 << 20

var (
	pngSignature = []byte("\x89PNG\r\n\x1a\n")
	angleSpan    = regexp.MustCompile(`<.*>`)

	errNotPNG = errors.New("not a png file")
)

// PNGPrompt returns the positive prompt of a generated PNG, cleaned for use
// as a summary. Other formats return "".
func PNGPrompt(imagePath string) (string, error) {
	if !strings.EqualFold(filepath.Ext(imagePath), ".png") {
		return "", nil
	}
	f, err := os.Open(imagePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, err := readPNGText(f)
	if err != nil {
		return "", err
	}
	params, ok := text[ParametersKey]
	if !ok {
		return "", nil
	}
	return CleanPrompt(params), nil
}

// CleanPrompt keeps the text before "Negative prompt: ", drops <lora:...>
// style spans and trims spaces and commas.
func CleanPrompt(params string) string {
	prompt, _, _ := strings.Cut(params, "Negative prompt: ")
	prompt = utils.NormalizeSpace(prompt)
	prompt = angleSpan.ReplaceAllString(prompt, "")
	prompt = strings.Trim(strings.TrimSpace(prompt), ",")
	return strings.TrimSpace(prompt)
}

// readPNGText collects tEXt, zTXt and iTXt chunks keyed by keyword.
func readPNGText(r io.Reader) (map[string]string, error) {
	br := bufio.NewReader(r)
	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(br, sig); err != nil || !bytes.Equal(sig, pngSignature) {
		return nil, errNotPNG
	}

	out := map[string]string{}
	var header [8]byte
	for {
		if _, err := io.ReadFull(br, header[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return out, nil
			}
			return out, err
		}
		length := binary.BigEndian.Uint32(header[:4])
		kind := string(header[4:8])

		switch kind {
		case "IEND":
			return out, nil
		case "tEXt", "zTXt", "iTXt":
			if length > maxTextChunk {
				return out, fmt.Errorf("%s chunk too large: %d bytes", kind, length)
			}
			data := make([]byte, length)
			if _, err := io.ReadFull(br, data); err != nil {
				return out, err
			}
			if key, value, err := decodeTextChunk(kind, data); err == nil {
				out[key] = value
			}
		default:
			if _, err := br.Discard(int(length)); err != nil {
				return out, err
			}
		}
		// CRC
		if _, err := br.Discard(4); err != nil {
			return out, err
		}
	}
}

func decodeTextChunk(kind string, data []byte) (string, string, error) {
	key, rest, ok := bytes.Cut(data, []byte{0})
	if !ok {
		return "", "", errors.New("text chunk without keyword")
	}
	switch kind {
	case "tEXt":
		return string(key), latin1(rest), nil
	case "zTXt":
		if len(rest) < 1 {
			return "", "", errors.New("short zTXt chunk")
		}
		text, err := inflate(rest[1:])
		return string(key), latin1(text), err
	}

	// iTXt: compression flag, method, language tag, translated keyword, text.
	if len(rest) < 2 {
		return "", "", errors.New("short iTXt chunk")
	}
	compressed := rest[0] == 1
	rest = rest[2:]
	_, rest, ok = bytes.Cut(rest, []byte{0})
	if !ok {
		return "", "", errors.New("iTXt chunk without language tag")
	}
	_, rest, ok = bytes.Cut(rest, []byte{0})
	if !ok {
		return "", "", errors.New("iTXt chunk without translated keyword")
	}
	if compressed {
		text, err := inflate(rest)
		return string(key), string(text), err
	}
	return string(key), string(rest), nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(io.LimitReader(zr, maxTextChunk))
}

func latin1(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
