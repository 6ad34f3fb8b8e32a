package mpris

import (
	"testing"

	"github.com/widdle/reader"
)

func TestMetadataVariantsRoundTrip(t *testing.T) {
	md := reader.NowPlayingMetadata{
		MediaID:        "book-3/chapter-1",
		Title:          "Chapter 1",
		Artist:         "Kenneth Grahame",
		Album:          "The Wind in the Willows",
		DurationMillis: 2100000,
		ArtworkURI:     "file:///covers/willows.png",
	}

	got := metadataFromVariants(metadataToVariants(md))

	if got.Title != md.Title {
		t.Errorf("title: got %q; want %q", got.Title, md.Title)
	}
	if got.Artist != md.Artist {
		t.Errorf("artist: got %q; want %q", got.Artist, md.Artist)
	}
	if got.Album != md.Album {
		t.Errorf("album: got %q; want %q", got.Album, md.Album)
	}
	if got.DurationMillis != md.DurationMillis {
		t.Errorf("duration: got %d; want %d", got.DurationMillis, md.DurationMillis)
	}
	if got.ArtworkURI != md.ArtworkURI {
		t.Errorf("art url: got %q; want %q", got.ArtworkURI, md.ArtworkURI)
	}
}

func TestMetadataFromVariantsEmpty(t *testing.T) {
	got := metadataFromVariants(nil)
	if got != (reader.NowPlayingMetadata{}) {
		t.Errorf("expected zero metadata, got %+v", got)
	}
}

func TestTrackIDPath(t *testing.T) {
	cases := []struct {
		mediaID string
		want    string
	}{
		{"", "/org/mpris/MediaPlayer2/TrackList/NoTrack"},
		{"book42", "/com/widdle/reader/track/book42"},
		{"book-42/chapter 3", "/com/widdle/reader/track/book_42_chapter_3"},
	}

	for _, c := range cases {
		got := trackIDPath(c.mediaID)
		if string(got) != c.want {
			t.Errorf("trackIDPath(%q): got %s; want %s", c.mediaID, got, c.want)
		}
		if !got.IsValid() {
			t.Errorf("trackIDPath(%q) is not a valid object path", c.mediaID)
		}
	}
}
