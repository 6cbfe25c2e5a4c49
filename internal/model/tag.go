package model

import (
	"regexp"
	"time"
)

// TagPalette is the set of predefined tag colors offered by the tag manager.
var TagPalette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
}

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Tag is a named, colored label that todos reference by id.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidColor reports whether c is a #RGB or #RRGGBB hex color.
func ValidColor(c string) bool {
	return hexColorPattern.MatchString(c)
}
