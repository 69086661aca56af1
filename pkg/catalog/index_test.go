package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseIndexLine(t *testing.T) {
	type scenario struct {
		line  string
		ok    bool
		meta  ImageMeta
	}

	scenarios := []scenario{
		{
			"ubuntu;22.04;amd64;default;20240101_10:00;/images/ubuntu/22.04/amd64/default/20240101_10:00/",
			true,
			ImageMeta{
				Distribution: "ubuntu",
				Version:      "22.04",
				Arch:         "amd64",
				UploadTS:     time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
				PathSuffix:   "/images/ubuntu/22.04/amd64/default/20240101_10:00/",
			},
		},
		{
			"ubuntu;22.04;amd64;minimal;20240101_10:00;/images/ubuntu/22.04/amd64/minimal/20240101_10:00/",
			false,
			ImageMeta{},
		},
		{
			"not-even-close-to-six-fields",
			false,
			ImageMeta{},
		},
		{
			"ubuntu;22.04;amd64;default;not-a-timestamp;/images/ubuntu/22.04/amd64/default/not-a-timestamp/",
			false,
			ImageMeta{},
		},
	}

	for _, s := range scenarios {
		meta, ok := parseIndexLine(s.line)
		assert.Equal(t, s.ok, ok)
		if s.ok {
			assert.Equal(t, s.meta, meta)
		}
	}
}

func TestNewest(t *testing.T) {
	older := ImageMeta{PathSuffix: "older", UploadTS: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := ImageMeta{PathSuffix: "newer", UploadTS: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	tieA := ImageMeta{PathSuffix: "tieA", UploadTS: newer.UploadTS}
	tieB := ImageMeta{PathSuffix: "tieB", UploadTS: newer.UploadTS}

	best, err := newest([]ImageMeta{older, newer})
	assert.NoError(t, err)
	assert.Equal(t, "newer", best.PathSuffix)

	// a later tie-break entry wins over an earlier one with the same timestamp
	best, err = newest([]ImageMeta{tieA, tieB})
	assert.NoError(t, err)
	assert.Equal(t, "tieB", best.PathSuffix)

	_, err = newest(nil)
	assert.Error(t, err)
}
