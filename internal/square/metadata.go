package square

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"squarify/pkg/imgutil"
)

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// countMetadata reports how many metadata entries the source carries. The
// encoders never copy them, so this is what a conversion drops.
func countMetadata(rs io.ReadSeeker, kind imgutil.Kind) (int, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	switch kind {
	case imgutil.KindJPEG:
		return countJPEGExifTags(rs)
	case imgutil.KindTIFF:
		return countExifTags(rs)
	case imgutil.KindPNG:
		return countPNGMetadataChunks(rs)
	default:
		return 0, nil
	}
}

// countJPEGExifTags scans the JPEG stream for its APP1 EXIF block before
// parsing it; the flat universal search expects a raw TIFF header.
func countJPEGExifTags(r io.Reader) (int, error) {
	raw, err := exif.SearchAndExtractExifWithReader(r)
	if err != nil {
		if errorsIsNoExif(err) {
			return 0, nil
		}
		return 0, err
	}
	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return 0, err
	}
	return len(tags), nil
}

func countExifTags(rs io.ReadSeeker) (int, error) {
	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if errorsIsNoExif(err) {
			return 0, nil
		}
		return 0, err
	}
	return len(tags), nil
}

func errorsIsNoExif(err error) bool {
	if errors.Is(err, exif.ErrNoExif) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}

func countPNGMetadataChunks(r io.Reader) (int, error) {
	br := bufio.NewReader(r)

	sig := make([]byte, 8)
	if _, err := io.ReadFull(br, sig); err != nil {
		return 0, err
	}
	if string(sig) != string(pngSignature) {
		return 0, errors.New("invalid PNG signature")
	}

	count := 0
	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			if err == io.EOF {
				return count, nil
			}
			return count, err
		}
		length := binary.BigEndian.Uint32(lenBuf)

		typeBuf := make([]byte, 4)
		if _, err := io.ReadFull(br, typeBuf); err != nil {
			return count, err
		}
		chunkName := string(typeBuf)

		if isPNGMetadataChunk(chunkName) {
			count++
		}
		if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
			return count, err
		}
		if chunkName == "IEND" {
			return count, nil
		}
	}
}

func isPNGMetadataChunk(chunkName string) bool {
	switch chunkName {
	case "tEXt", "zTXt", "iTXt", "eXIf", "tIME", "iCCP":
		return true
	default:
		return false
	}
}
