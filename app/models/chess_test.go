package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestParseArchiveRef(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		want    ArchiveRef
		wantErr bool
	}{
		{"canonical", "https://api.chess.com/pub/player/hikaru/games/2019/03", ArchiveRef{Year: 2019, Month: 3}, false},
		{"trailing slash", "https://api.chess.com/pub/player/hikaru/games/2023/12/", ArchiveRef{Year: 2023, Month: 12}, false},
		{"bad month", "https://api.chess.com/pub/player/hikaru/games/2023/13", ArchiveRef{}, true},
		{"short year", "https://api.chess.com/pub/player/hikaru/games/23/01", ArchiveRef{}, true},
		{"no tag", "archives", ArchiveRef{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseArchiveRef(tc.url)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseArchiveRef(%q) expected error, got %+v", tc.url, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseArchiveRef(%q) error = %v", tc.url, err)
			}
			if got.Year != tc.want.Year || got.Month != tc.want.Month || got.URL != tc.url {
				t.Fatalf("ParseArchiveRef(%q) = %+v", tc.url, got)
			}
		})
	}
}

func TestArchiveRefTag(t *testing.T) {
	if got := (ArchiveRef{Year: 2019, Month: 3}).Tag(); got != "2019/03" {
		t.Fatalf("Tag = %q, want 2019/03", got)
	}
}

func TestSelectionKind(t *testing.T) {
	cases := map[Selection]SelectionKind{
		{URL: "https://x/2023/01"}:          SelectLocator,
		{URL: "https://x/2023/01", Year: 1}: SelectInvalid,
		{Year: 2023, Month: 2}:              SelectMonth,
		{Year: 2023}:                        SelectYear,
		{Year: 2023, Month: 13}:             SelectInvalid,
		{Month: 4}:                          SelectInvalid,
		{}:                                  SelectInvalid,
	}
	for sel, want := range cases {
		if got := sel.Kind(); got != want {
			t.Fatalf("%+v.Kind() = %v, want %v", sel, got, want)
		}
	}
}

func TestFlattenGame(t *testing.T) {
	raw := json.RawMessage(`{"url":"u","end_time":1700000000,"white":{"username":"Hikaru","rating":3200,"@id":"x"},"accuracies":{"white":91.5,"black":88.25}}`)
	g, err := FlattenGame(raw)
	if err != nil {
		t.Fatalf("FlattenGame error = %v", err)
	}
	if name, _ := g.String("white.username"); name != "Hikaru" {
		t.Fatalf("white.username = %q", name)
	}
	if r, ok := g.Int("white.rating"); !ok || r != 3200 {
		t.Fatalf("white.rating = %d,%v", r, ok)
	}
	if a, ok := g.Float("accuracies.black"); !ok || a != 88.25 {
		t.Fatalf("accuracies.black = %v,%v", a, ok)
	}
	if _, ok := g["white"]; ok {
		t.Fatalf("nested object should have been flattened")
	}
	if end, ok := g.Int("end_time"); !ok || end != 1700000000 {
		t.Fatalf("end_time = %d,%v", end, ok)
	}

	if _, err := FlattenGame(json.RawMessage(`[1,2]`)); err == nil {
		t.Fatalf("expected error for non-object game")
	}
}

func TestGameTableColumns(t *testing.T) {
	tbl := GameTable{Identity: "Hikaru"}
	want := []string{"Hikaru's rating", "opponent's rating", "end_time", "time_class"}
	if got := tbl.Columns(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Columns = %v, want %v", got, want)
	}

	tbl.HasAccuracy = true
	want = []string{"Hikaru's rating", "opponent's rating", "Hikaru accuracy", "opponent accuracy", "end_time", "time_class"}
	if got := tbl.Columns(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Columns with accuracy = %v, want %v", got, want)
	}
}

func TestGameTableRowsOmitAccuracy(t *testing.T) {
	tbl := GameTable{Identity: "Hikaru", Games: []CleanedGame{{IdentityRating: 3200, OpponentRating: 2900, TimeClass: "blitz"}}}
	rows := tbl.Rows()
	if len(rows) != 1 {
		t.Fatalf("Rows len = %d", len(rows))
	}
	if len(rows[0]) != 4 {
		t.Fatalf("row has %d keys, want 4: %v", len(rows[0]), rows[0])
	}
	if rows[0]["opponent's rating"] != 2900 {
		t.Fatalf("opponent's rating = %v", rows[0]["opponent's rating"])
	}
}

func TestSummarize(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC) }
	tbl := GameTable{Identity: "Hikaru", Games: []CleanedGame{
		{IdentityRating: 3000, OpponentRating: 2500, TimeClass: "blitz", EndTime: day(2)},
		{IdentityRating: 2900, OpponentRating: 2700, TimeClass: "bullet", EndTime: day(1)},
		{IdentityRating: 3010, OpponentRating: 2601, TimeClass: "blitz", EndTime: day(3)},
	}}

	s := tbl.Summarize()
	if s.Games != 3 || s.MaxOpponentRating != 2700 || s.AvgOpponentRating != 2600 {
		t.Fatalf("Summarize stats = %+v", s)
	}
	want := []ClassCount{{"blitz", 2}, {"bullet", 1}}
	if !reflect.DeepEqual(s.TimeClasses, want) {
		t.Fatalf("TimeClasses = %v, want %v", s.TimeClasses, want)
	}
	if !s.First.Equal(day(1)) || !s.Last.Equal(day(3)) {
		t.Fatalf("First/Last = %v/%v", s.First, s.Last)
	}
	if s.RatingByClass["blitz"] != 3010 {
		t.Fatalf("latest blitz rating = %d", s.RatingByClass["blitz"])
	}
	wantBlitz := []RatingPoint{{EndTime: day(2), Rating: 3000}, {EndTime: day(3), Rating: 3010}}
	if !reflect.DeepEqual(s.RatingSeries["blitz"], wantBlitz) {
		t.Fatalf("blitz series = %v, want %v", s.RatingSeries["blitz"], wantBlitz)
	}
	if len(s.RatingSeries["bullet"]) != 1 {
		t.Fatalf("bullet series = %v", s.RatingSeries["bullet"])
	}

	if empty := (GameTable{Identity: "x"}).Summarize(); empty.Games != 0 || empty.First != nil {
		t.Fatalf("empty Summarize = %+v", empty)
	}
}

func TestSummarizeSeriesFollowsEndTime(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2023, 5, 1, h, 0, 0, 0, time.UTC) }
	// Months concatenate in archive order, so rows need not be chronological.
	tbl := GameTable{Identity: "Hikaru", Games: []CleanedGame{
		{IdentityRating: 2810, TimeClass: "rapid", EndTime: at(9)},
		{IdentityRating: 2790, TimeClass: "rapid", EndTime: at(3)},
		{IdentityRating: 2800, TimeClass: "rapid", EndTime: at(6)},
	}}
	s := tbl.Summarize()

	got := s.RatingSeries["rapid"]
	if len(got) != 3 || got[0].Rating != 2790 || got[1].Rating != 2800 || got[2].Rating != 2810 {
		t.Fatalf("rapid series = %v", got)
	}
	if s.RatingByClass["rapid"] != 2810 {
		t.Fatalf("latest rapid rating = %d, want 2810", s.RatingByClass["rapid"])
	}
	if tbl.Games[0].IdentityRating != 2810 {
		t.Fatalf("Summarize reordered the table rows")
	}
}
