package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ArchiveRef is one monthly archive URL plus the year/month parsed from its tail.
type ArchiveRef struct {
	URL   string `json:"url"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
}

// ParseArchiveRef reads ".../YYYY/MM" off the end of an archive URL.
func ParseArchiveRef(url string) (ArchiveRef, error) {
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	if len(parts) < 2 {
		return ArchiveRef{}, fmt.Errorf("archive url %q: missing year/month", url)
	}
	year, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil || len(parts[len(parts)-2]) != 4 {
		return ArchiveRef{}, fmt.Errorf("archive url %q: bad year", url)
	}
	month, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || month < 1 || month > 12 {
		return ArchiveRef{}, fmt.Errorf("archive url %q: bad month", url)
	}
	return ArchiveRef{URL: url, Year: year, Month: month}, nil
}

// Tag renders the archive as "YYYY/MM".
func (a ArchiveRef) Tag() string {
	return fmt.Sprintf("%04d/%02d", a.Year, a.Month)
}

// Selection picks what Ingest fetches. Exactly one form is valid:
// URL alone, Year+Month, or Year alone (every archive in that year).
type Selection struct {
	URL   string `json:"url,omitempty"`
	Year  int    `json:"year,omitempty"`
	Month int    `json:"month,omitempty"`
}

type SelectionKind int

const (
	SelectInvalid SelectionKind = iota
	SelectLocator
	SelectMonth
	SelectYear
)

func (s Selection) Kind() SelectionKind {
	switch {
	case s.URL != "" && s.Year == 0 && s.Month == 0:
		return SelectLocator
	case s.URL != "":
		return SelectInvalid
	case s.Year > 0 && s.Month >= 1 && s.Month <= 12:
		return SelectMonth
	case s.Year > 0 && s.Month == 0:
		return SelectYear
	}
	return SelectInvalid
}

func (s Selection) String() string {
	switch s.Kind() {
	case SelectLocator:
		return s.URL
	case SelectMonth:
		return fmt.Sprintf("%04d/%02d", s.Year, s.Month)
	case SelectYear:
		return fmt.Sprintf("%04d", s.Year)
	}
	return fmt.Sprintf("invalid(url=%q year=%d month=%d)", s.URL, s.Year, s.Month)
}

// CleanedGame is one game from the requested identity's point of view.
type CleanedGame struct {
	IdentityRating   int       `json:"identity_rating"`
	OpponentRating   int       `json:"opponent_rating"`
	IdentityAccuracy *float64  `json:"identity_accuracy,omitempty"`
	OpponentAccuracy *float64  `json:"opponent_accuracy,omitempty"`
	EndTime          time.Time `json:"end_time"`
	TimeClass        string    `json:"time_class"` // bullet/blitz/rapid/daily
}
