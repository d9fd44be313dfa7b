package utils

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Compliance & Standards", "compliance-standards"},
		{"  Café Déjà Vu  ", "cafe-deja-vu"},
		{"Fire-Safety 101!!", "fire-safety-101"},
		{"---", ""},
		{"Worker Welfare", "worker-welfare"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestReadingTime(t *testing.T) {
	assert.Equal(t, 1, ReadingTime(""))
	assert.Equal(t, 1, ReadingTime("a few words"))
	assert.Equal(t, 1, ReadingTime(strings.Repeat("word ", 201)))
	assert.Equal(t, 2, ReadingTime(strings.Repeat("word ", 300)))
	assert.Equal(t, 3, ReadingTime(strings.Repeat("word ", 640)))
}

func TestTimestampedName(t *testing.T) {
	name := TimestampedName(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^20240506_070809_[0-9a-f]{8}$`), name)
}
