package domain

import "path/filepath"

// audioExtensions are matched case-sensitively against the text after the last dot.
var audioExtensions = map[string]bool{
	"mp3":  true,
	"flac": true,
	"ogg":  true,
}

// IsAudioFile reports whether path has one of the indexed extensions.
// The comparison is case-sensitive: "song.MP3" is not indexed.
func IsAudioFile(path string) bool {
	ext := filepath.Ext(path)
	return len(ext) > 1 && audioExtensions[ext[1:]]
}
