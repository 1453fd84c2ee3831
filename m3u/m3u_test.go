package m3u

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func entry(file string, track int, name string) Entry {
	return Entry{
		File:   file,
		Track:  track,
		Name:   name,
		Length: -1,
		Intro:  -1,
		Loop:   -1,
		Fade:   -1,
		Repeat: -1,
	}
}

func TestParseEntry(t *testing.T) {
	tcs := []struct {
		line string
		want Entry
	}{
		{
			line: "smb.nsf::NSF,1,Overworld,1:30,,8",
			want: Entry{File: "smb.nsf", Type: "NSF", Track: 1, Decimal: true, Name: "Overworld",
				Length: 90000, Intro: -1, Loop: -1, Fade: 8000, Repeat: -1},
		},
		{
			line: "smb.nsf::NSF,$0A,Castle",
			want: func() Entry {
				e := entry("smb.nsf", 10, "Castle")
				e.Type = "NSF"
				return e
			}(),
		},
		{
			line: "game.ay,2,Loop, 2:00, 1:00, 5, 3",
			want: Entry{File: "game.ay", Track: 2, Decimal: true, Name: "Loop",
				Length: 120000, Intro: 60000, Loop: 60000, Fade: 5000, Repeat: 3},
		},
		{
			line: "game.ay,2,Intro given,1:40,0:10-,",
			want: Entry{File: "game.ay", Track: 2, Decimal: true, Name: "Intro given",
				Length: 100000, Intro: 10000, Loop: 90000, Fade: -1, Repeat: -1},
		},
		{
			line: "game.ay,3,Whole loop,0:45,-,",
			want: Entry{File: "game.ay", Track: 3, Decimal: true, Name: "Whole loop",
				Length: 45000, Intro: -1, Loop: 45000, Fade: -1, Repeat: -1},
		},
		{
			line: `a\,b.nsf,1,Name\, with commas, and more,1:02:03.500`,
			want: Entry{File: "a,b.nsf", Track: 1, Decimal: true, Name: "Name, with commas, and more",
				Length: 3723500, Intro: -1, Loop: -1, Fade: -1, Repeat: -1},
		},
		{
			line: "no track.nsf",
			want: entry("no track.nsf", -1, ""),
		},
		{
			line: "file,with,commas.nsf,4",
			want: func() Entry {
				e := entry("file,with,commas.nsf", 4, "")
				e.Decimal = true
				return e
			}(),
		},
	}
	for _, tc := range tcs {
		t.Run(tc.line, func(t *testing.T) {
			var e Entry
			if !e.parse(tc.line) {
				t.Fatalf("parse(%q) reported an error", tc.line)
			}
			if diff := cmp.Diff(tc.want, e); diff != "" {
				t.Errorf("entry mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseBadEntry(t *testing.T) {
	for _, line := range []string{
		"x.nsf,1x,name",
		"x.nsf,1,name,1:00 garbage",
		"x.nsf,1,name,1:00,,5,3 three",
	} {
		var e Entry
		if e.parse(line) {
			t.Errorf("parse(%q) succeeded, want an error", line)
		}
	}
}

const playlist = `# @TITLE       Super Game
# @ARTIST      Some Composer
#              and a friend
# @DATE        1988
# @RIPPER      ripper

# Copyright: 1988 Company
# Tagging: tagger
smb.nsf::NSF,1,First,1:00,,5
smb.nsf::NSF,2,Second,2:00,,5
smb.nsf::NSF,x,Broken
smb.nsf::NSF,$03,Third
`

func TestParse(t *testing.T) {
	pl, err := Parse(strings.NewReader(playlist))
	if err != nil {
		t.Fatal(err)
	}

	wantInfo := Info{
		Title:     "Super Game",
		Artist:    "Some Composer, and a friend",
		Date:      "1988",
		Ripping:   "ripper",
		Tagging:   "tagger",
		Copyright: "1988 Company",
	}
	if diff := cmp.Diff(wantInfo, pl.Info); diff != "" {
		t.Errorf("info mismatch (-want +got):\n%s", diff)
	}

	if got := len(pl.Entries); got != 3 {
		t.Fatalf("got %d entries, want 3", got)
	}
	if got := pl.Entries[2].Name; got != "Third" {
		t.Errorf("third entry name = %q, want %q", got, "Third")
	}
	if pl.FirstError != 11 {
		t.Errorf("FirstError = %d, want 11", pl.FirstError)
	}
}

func TestLineEndings(t *testing.T) {
	for _, eol := range []string{"\n", "\r\n", "\r"} {
		text := strings.Join([]string{"a.nsf,1,A", "b.nsf,2,B", "c.nsf,x,bad"}, eol)
		pl, err := ParseBytes([]byte(text))
		if err != nil {
			t.Fatalf("eol %q: %v", eol, err)
		}
		if len(pl.Entries) != 2 || pl.FirstError != 3 {
			t.Errorf("eol %q: %d entries, first error %d; want 2, 3", eol, len(pl.Entries), pl.FirstError)
		}
	}
}

func TestTitle(t *testing.T) {
	tcs := []struct {
		name string
		text string
		want string
	}{
		{"lone comment", "# My Game\na.nsf,1\n", ""},
		{"comment and composer", "# My Game\n# Composer: someone\na.nsf,1\n", "My Game"},
		{"not first", "a.nsf,1\n# My Game\n# Composer: someone\n", ""},
		{"game key", "# Game: Named\n# Artist: someone\na.nsf,1\n", "Named"},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			pl, err := ParseBytes([]byte(tc.text))
			if err != nil {
				t.Fatal(err)
			}
			if pl.Info.Title != tc.want {
				t.Errorf("Title = %q, want %q", pl.Info.Title, tc.want)
			}
		})
	}
}

func TestNotPlaylist(t *testing.T) {
	for _, text := range []string{
		"",
		"# only comments\n",
		"a.nsf,1x\n",
		"NESM\x1a\x01\x00",
	} {
		if _, err := ParseBytes([]byte(text)); !errors.Is(err, ErrNotPlaylist) {
			t.Errorf("ParseBytes(%q) error = %v, want ErrNotPlaylist", text, err)
		}
	}
}
