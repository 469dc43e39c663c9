package models

import (
	"strings"
	"time"
)

// DisplayDateLayout is the DD-MM-YYYY form used for date values inside
// nodeData. The canonical Sample date columns use time.Time; only the open
// nodeData map carries display strings.
const DisplayDateLayout = "02-01-2006"

// Well-known nodeData keys mirrored by the synchronizer.
const (
	NodeDataKeyLabResult     = "labResult"
	NodeDataKeyLabReportDate = "labReportDate"
)

// ParseDisplayDate parses a DD-MM-YYYY nodeData value.
func ParseDisplayDate(value string) (time.Time, error) {
	return time.Parse(DisplayDateLayout, strings.TrimSpace(value))
}

// FormatDisplayDate renders a time in the DD-MM-YYYY nodeData form.
func FormatDisplayDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}

var imageURIPrefixes = []string{"file://", "data:image", "content://", "blob:"}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".heic"}

// IsImageValue reports whether a nodeData value should render as an image.
// Classification is content-based only: consumers must never infer an image
// from the field name, so renamed fields keep rendering old rows correctly.
func IsImageValue(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return false
	}

	for _, prefix := range imageURIPrefixes {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}

	for _, ext := range imageExtensions {
		if strings.HasSuffix(v, ext) {
			return true
		}
	}

	return false
}

// StringValue coerces a nodeData entry to its string form, returning false
// for absent or non-string values.
func StringValue(data map[string]any, key string) (string, bool) {
	if data == nil {
		return "", false
	}

	raw, ok := data[key]
	if !ok {
		return "", false
	}

	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}

	return s, true
}
