package sidecar

import (
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/viralesveras/lora-tag-helper/internal/entity"
)

// Exif reads artist, description, camera and capture time. Files without
// EXIF data give an empty summary.
func (r *ItemRepoImpl) Exif(imagePath string) (entity.ExifInfo, error) {
	var info entity.ExifInfo
	f, err := os.Open(imagePath)
	if err != nil {
		return info, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// Most images carry no EXIF at all.
		return info, nil
	}

	info.Artist = exifString(x, exif.Artist)
	info.Description = exifString(x, exif.ImageDescription)
	info.Camera = strings.TrimSpace(exifString(x, exif.Make) + " " + exifString(x, exif.Model))
	if t, err := x.DateTime(); err == nil {
		info.Taken = &t
	}
	return info, nil
}

func exifString(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}
