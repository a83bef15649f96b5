package filename

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	idMarker         = regexp.MustCompile(`(?i)\[tt(\d+)-(\d+)\]`)
	trailingIDMarker = regexp.MustCompile(`\s*\[tt\d+-\d+\]$`)
	playableExt      = regexp.MustCompile(`(?i)\.(mp4|mkv|avi)$`)
	episodeMarker    = regexp.MustCompile(`(?i)S(\d{2})E(\d{2})`)
	trailingExt      = regexp.MustCompile(`\.(\w+)$`)
)

// IDs holds the external identifiers embedded in a file or folder name.
// The zero value means no marker was present.
type IDs struct {
	IMDB string
	TMDB string
}

func (ids IDs) Empty() bool {
	return ids.IMDB == "" && ids.TMDB == ""
}

type Episode struct {
	Season  int
	Episode int
}

// ExtractIDs looks for a [tt<imdb>-<tmdb>] marker anywhere in name.
func ExtractIDs(name string) IDs {
	match := idMarker.FindStringSubmatch(name)
	if match == nil {
		return IDs{}
	}
	return IDs{
		IMDB: "tt" + match[1],
		TMDB: "tmdb:" + match[2],
	}
}

// CleanName drops an id marker from the end of name. Markers elsewhere are left alone.
func CleanName(name string) string {
	return strings.TrimSpace(trailingIDMarker.ReplaceAllString(name, ""))
}

func StripExtension(name string) string {
	return playableExt.ReplaceAllString(name, "")
}

func IsPlayable(name string) bool {
	return playableExt.MatchString(name)
}

// ParseEpisode reads the first SxxEyy marker in name.
func ParseEpisode(name string) (Episode, bool) {
	match := episodeMarker.FindStringSubmatch(name)
	if match == nil {
		return Episode{}, false
	}
	// Both groups are exactly two digits so Atoi can't fail
	season, _ := strconv.Atoi(match[1])
	episode, _ := strconv.Atoi(match[2])
	return Episode{Season: season, Episode: episode}, true
}

func StripEpisodeMarker(name string) string {
	loc := episodeMarker.FindStringIndex(name)
	if loc == nil {
		return name
	}
	return name[:loc[0]] + name[loc[1]:]
}

// Extension returns the uppercased trailing extension of name, or "" if there isn't one.
func Extension(name string) string {
	match := trailingExt.FindStringSubmatch(name)
	if match == nil {
		return ""
	}
	return strings.ToUpper(match[1])
}
