package service

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"

	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

var (
	supportedExtensions = map[string]struct{}{
		".mp3": {}, ".flac": {}, ".m4a": {}, ".ogg": {}, ".wav": {},
	}

	collaborationMarkers = []string{"feat.", "ft.", "/", "&", " x ", " and ", " с "}
)

// ScanFolder walks folder and reads artist and title tags of every supported audio file.
// Files without tags take the parent directory as artist and the file stem as title.
func ScanFolder(ctx context.Context, folder string) ([]entity.Track, []string, entity.ScanReport, error) {
	var (
		tracks []entity.Track
		report entity.ScanReport
	)

	pure := make(map[string]struct{})

	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err = ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != folder {
				return filepath.SkipDir
			}

			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := supportedExtensions[ext]; !ok {
			return nil
		}

		report.TotalFiles++

		artist, title := readTags(path)
		if artist == "" {
			artist = filepath.Base(filepath.Dir(path))
		}

		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		if artist != "" && IsPureArtist(artist) {
			pure[artist] = struct{}{}
		}

		searchName := artist + " - " + title
		tracks = append(tracks, entity.Track{
			Path:       path,
			Artist:     artist,
			Title:      title,
			SearchName: searchName,
			SearchRU:   PhoneticRU(searchName),
		})

		return nil
	})
	if err != nil {
		return nil, nil, report, err
	}

	artists := make([]string, 0, len(pure))
	for artist := range pure {
		artists = append(artists, artist)
	}
	sort.Strings(artists)

	report.PureArtists = len(artists)

	return tracks, artists, report, nil
}

func readTags(path string) (string, string) {
	file, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		return "", ""
	}

	return strings.TrimSpace(meta.Artist()), strings.TrimSpace(meta.Title())
}

// IsPureArtist reports whether artist names a single performer, not a collaboration.
func IsPureArtist(artist string) bool {
	for _, marker := range collaborationMarkers {
		if strings.Contains(artist, marker) {
			return false
		}
	}

	return true
}
