package app

import (
	"context"
	"net/http"
	"reflect"
	"strconv"
	"testing"
	"time"

	"example/chess-history/app/models"
)

func archiveURL(identity, tag string) string {
	return testBase + "/player/" + identity + "/games/" + tag
}

func archivesBody(identity string, tags ...string) string {
	body := `{"archives":[`
	for i, tag := range tags {
		if i > 0 {
			body += ","
		}
		body += `"` + archiveURL(identity, tag) + `"`
	}
	return body + `]}`
}

func gameJSON(uuid, white string, whiteRating int, black string, blackRating int, end time.Time) string {
	return `{"uuid":"` + uuid + `","url":"https://www.chess.com/game/live/` + uuid + `","time_class":"blitz","end_time":` +
		itoa(end.Unix()) + `,"white":{"username":"` + white + `","rating":` + itoa(int64(whiteRating)) +
		`},"black":{"username":"` + black + `","rating":` + itoa(int64(blackRating)) + `}}`
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func gamesBody(games ...string) string {
	body := `{"games":[`
	for i, g := range games {
		if i > 0 {
			body += ","
		}
		body += g
	}
	return body + `]}`
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }

func TestIngestYearScenario(t *testing.T) {
	c, _ := newMockClient(t, map[string][]mockResp{
		testBase + "/player/Hikaru/games/archives": okResp(archivesBody("Hikaru", "2023/01", "2023/02")),
		archiveURL("Hikaru", "2023/01"): okResp(gamesBody(
			gameJSON("g1", "Hikaru", 3200, "Magnus", 3150, day(2023, 1, 3)),
			gameJSON("g2", "Nihal", 3050, "Hikaru", 3210, day(2023, 1, 9)),
		)),
		archiveURL("Hikaru", "2023/02"): okResp(gamesBody()),
	})

	tbl := NewPipeline(c).Ingest(context.Background(), "Hikaru", models.Selection{Year: 2023})
	if tbl.Len() != 2 {
		t.Fatalf("merged rows = %d, want 2", tbl.Len())
	}
	if tbl.Games[0].OpponentRating != 3150 {
		t.Fatalf("first opponent rating = %d, want black's 3150", tbl.Games[0].OpponentRating)
	}
	if tbl.Games[1].OpponentRating != 3050 {
		t.Fatalf("second opponent rating = %d, want white's 3050", tbl.Games[1].OpponentRating)
	}
}

func TestIngestYearEqualsSumOfMonths(t *testing.T) {
	responses := func() map[string][]mockResp {
		return map[string][]mockResp{
			testBase + "/player/Hikaru/games/archives": okResp(archivesBody("Hikaru", "2022/12", "2023/01", "2023/03", "2024/01")),
			archiveURL("Hikaru", "2022/12"):            okResp(gamesBody(gameJSON("a", "Hikaru", 1, "x", 2, day(2022, 12, 30)))),
			archiveURL("Hikaru", "2023/01"): okResp(gamesBody(
				gameJSON("b", "Hikaru", 1, "x", 2, day(2023, 1, 1)),
				gameJSON("c", "y", 3, "Hikaru", 4, day(2023, 1, 2)),
			)),
			archiveURL("Hikaru", "2023/03"): okResp(gamesBody(gameJSON("d", "Hikaru", 5, "z", 6, day(2023, 3, 1)))),
			archiveURL("Hikaru", "2024/01"): okResp(gamesBody(gameJSON("e", "Hikaru", 7, "z", 8, day(2024, 1, 1)))),
		}
	}

	c, _ := newMockClient(t, responses())
	year := NewPipeline(c).Ingest(context.Background(), "Hikaru", models.Selection{Year: 2023})

	for _, g := range year.Games {
		if g.EndTime.Year() != 2023 {
			t.Fatalf("game outside 2023: %v", g.EndTime)
		}
	}

	sum := 0
	for _, m := range []int{1, 3} {
		c, _ := newMockClient(t, responses())
		sum += NewPipeline(c).Ingest(context.Background(), "Hikaru", models.Selection{Year: 2023, Month: m}).Len()
	}
	if year.Len() != sum || sum != 3 {
		t.Fatalf("year rows = %d, sum of months = %d", year.Len(), sum)
	}
}

func TestIngestIsolatesFailedMonth(t *testing.T) {
	c, rt := newMockClient(t, map[string][]mockResp{
		testBase + "/player/Hikaru/games/archives": okResp(archivesBody("Hikaru", "2023/01", "2023/02", "2023/03")),
		archiveURL("Hikaru", "2023/01"): okResp(gamesBody(
			gameJSON("a", "Hikaru", 10, "x", 11, day(2023, 1, 1)),
			gameJSON("b", "Hikaru", 12, "x", 13, day(2023, 1, 2)),
		)),
		archiveURL("Hikaru", "2023/02"): {{status: http.StatusInternalServerError, body: `{"message":"boom"}`}},
		archiveURL("Hikaru", "2023/03"): okResp(gamesBody(gameJSON("c", "Hikaru", 14, "x", 15, day(2023, 3, 1)))),
	})

	tbl := NewPipeline(c).Ingest(context.Background(), "Hikaru", models.Selection{Year: 2023})
	if tbl.Len() != 3 {
		t.Fatalf("rows = %d, want 3", tbl.Len())
	}
	for i, want := range []int{10, 12, 14} {
		if tbl.Games[i].IdentityRating != want {
			t.Fatalf("row %d rating = %d, want %d", i, tbl.Games[i].IdentityRating, want)
		}
	}
	if rt.hits(archiveURL("Hikaru", "2023/02")) != 1 {
		t.Fatalf("failed month should be fetched exactly once")
	}
}

func TestIngestYearWithoutArchives(t *testing.T) {
	c, _ := newMockClient(t, map[string][]mockResp{
		testBase + "/player/Hikaru/games/archives": okResp(archivesBody("Hikaru", "2022/05")),
	})

	tbl := NewPipeline(c).Ingest(context.Background(), "Hikaru", models.Selection{Year: 2023})
	if tbl.Games == nil || tbl.Len() != 0 || tbl.Identity != "Hikaru" {
		t.Fatalf("expected empty table, got %+v", tbl)
	}
}

func TestIngestByLocatorAndMonth(t *testing.T) {
	body := gamesBody(gameJSON("a", "Hikaru", 3000, "x", 2500, day(2023, 4, 1)))
	c, _ := newMockClient(t, map[string][]mockResp{
		archiveURL("Hikaru", "2023/04"): {{status: http.StatusOK, body: body}, {status: http.StatusOK, body: body}},
	})
	p := NewPipeline(c)

	byURL := p.Ingest(context.Background(), "Hikaru", models.Selection{URL: archiveURL("Hikaru", "2023/04")})
	byMonth := p.Ingest(context.Background(), "Hikaru", models.Selection{Year: 2023, Month: 4})
	if byURL.Len() != 1 || byMonth.Len() != 1 {
		t.Fatalf("byURL=%d byMonth=%d", byURL.Len(), byMonth.Len())
	}
	if !reflect.DeepEqual(byURL.Games[0], byMonth.Games[0]) {
		t.Fatalf("locator and month forms disagree: %+v vs %+v", byURL.Games[0], byMonth.Games[0])
	}
}

func TestIngestInvalidSelection(t *testing.T) {
	c, rt := newMockClient(t, nil)
	tbl := NewPipeline(c).Ingest(context.Background(), "Hikaru", models.Selection{Month: 3})
	if tbl.Len() != 0 || len(rt.requests) != 0 {
		t.Fatalf("invalid selection should not fetch: rows=%d requests=%d", tbl.Len(), len(rt.requests))
	}
}

func TestIngestRejectsForeignLocator(t *testing.T) {
	c, rt := newMockClient(t, map[string][]mockResp{
		archiveURL("GothamChess", "2023/01"): okResp(gamesBody(gameJSON("a", "GothamChess", 2500, "Hikaru", 3200, day(2023, 1, 1)))),
	})
	p := NewPipeline(c)

	for _, u := range []string{"http://169.254.169.254/latest/meta-data", archiveURL("GothamChess", "2023/01")} {
		tbl := p.Ingest(context.Background(), "Hikaru", models.Selection{URL: u})
		if tbl.Len() != 0 {
			t.Fatalf("%s: rows = %d, want 0", u, tbl.Len())
		}
	}
	if len(rt.requests) != 0 {
		t.Fatalf("foreign locators must not be fetched, got %d requests", len(rt.requests))
	}
}
