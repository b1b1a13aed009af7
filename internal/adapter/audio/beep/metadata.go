package beep

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"

	"github.com/tejashwikalptaru/sonik/internal/domain"
)

// GetMetadata reads title, artist, album artist, album, year and track number
// with dhowden/tag. The duration comes from the ID3v2 TLEN frame when the
// file carries one; otherwise the file is decoded far enough to learn its length.
func (e *Engine) GetMetadata(filePath string) (domain.Track, error) {
	if filePath == "" {
		return domain.Track{}, domain.ErrInvalidFilePath
	}

	f, err := os.Open(filePath)
	if err != nil {
		return domain.Track{}, fmt.Errorf("%s: %w", filePath, domain.ErrTagUnreadable)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return domain.Track{}, fmt.Errorf("%s: %w: %v", filePath, domain.ErrTagUnreadable, err)
	}

	trackNum, _ := m.Track()
	track := domain.Track{
		FilePath:    filePath,
		Title:       m.Title(),
		Artist:      m.Artist(),
		AlbumArtist: m.AlbumArtist(),
		Album:       m.Album(),
		Year:        int32(m.Year()),
		TrackNum:    uint32(max(trackNum, 0)),
	}

	if ms, ok := tlenMillis(filePath); ok {
		track.Duration = ms
	} else if stream, format, err := decodeFile(filePath); err == nil {
		track.Duration = uint32(format.SampleRate.D(stream.Len()).Milliseconds())
		_ = stream.Close()
	}

	return track, nil
}

// tlenMillis reads the ID3v2 length frame, which holds milliseconds as text.
func tlenMillis(filePath string) (uint32, bool) {
	if !strings.EqualFold(filepath.Ext(filePath), ".mp3") {
		return 0, false
	}

	t, err := id3v2.Open(filePath, id3v2.Options{Parse: true, ParseFrames: []string{"Length"}})
	if err != nil {
		return 0, false
	}
	defer t.Close()

	text := strings.TrimSpace(t.GetTextFrame(t.CommonID("Length")).Text)
	if text == "" {
		return 0, false
	}
	ms, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(ms), true
}
