package model

// Track represents an audio file in the music library.
type Track struct {
	Path   string `json:"path"`   // Absolute path on the device
	Album  string `json:"album"`  // Album tag, or the containing folder name
	Title  string `json:"title"`  // Title tag, or the file name without extension
	Artist string `json:"artist"` // May be empty when the file carries no tags
}

// Label is the human readable form used in log lines.
func (t Track) Label() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}
