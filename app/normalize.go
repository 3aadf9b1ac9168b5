package app

import (
	"time"

	"example/chess-history/app/logging"
	"example/chess-history/app/models"
)

// Bookkeeping fields with no analytical value. Missing ones are ignored.
var bookkeepingColumns = []string{
	"url", "pgn", "tcn", "uuid", "initial_setup", "fen",
	"white.@id", "white.uuid", "black.@id", "black.uuid",
	"tournament", "match",
}

const (
	sideWhite = "white"
	sideBlack = "black"
)

// Normalizer turns raw chess.com games into a GameTable for one identity.
// It does no I/O.
type Normalizer struct {
	log *logging.Logger
}

func NewNormalizer() Normalizer {
	return Normalizer{log: logging.Named("normalizer")}
}

// Clean runs pruning, perspective, accuracy and end-time conversion in that
// order. Records the identity does not resolve on exactly one side are
// excluded and counted.
func (n Normalizer) Clean(raw []models.RawGame, identity string) models.GameTable {
	tbl := models.GameTable{
		Identity:    identity,
		HasAccuracy: HasAccuracy(raw),
		Games:       make([]models.CleanedGame, 0, len(raw)),
	}

	for _, rec := range Dedupe(raw) {
		rec = PruneColumns(rec)

		side, err := Perspective(rec, identity)
		if err != nil {
			tbl.Excluded++
			continue
		}
		opp := other(side)

		g := models.CleanedGame{
			IdentityRating: intField(rec, side+".rating"),
			OpponentRating: intField(rec, opp+".rating"),
			EndTime:        EndTime(rec),
		}
		g.TimeClass, _ = rec.String("time_class")

		if tbl.HasAccuracy {
			g.IdentityAccuracy = floatField(rec, "accuracies."+side)
			g.OpponentAccuracy = floatField(rec, "accuracies."+opp)
		}
		tbl.Games = append(tbl.Games, g)
	}

	if tbl.Excluded > 0 && n.log != nil {
		n.log.Warn().
			Err(ErrAmbiguousPerspective).
			Str("identity", identity).
			Int("excluded", tbl.Excluded).
			Int("kept", len(tbl.Games)).
			Msg("excluded games with ambiguous perspective")
	}
	return tbl
}

// PruneColumns returns a copy of rec without bookkeeping fields.
func PruneColumns(rec models.RawGame) models.RawGame {
	out := rec.Clone()
	for _, col := range bookkeepingColumns {
		delete(out, col)
	}
	return out
}

// HasAccuracy reports whether any record in the batch carries accuracies.
func HasAccuracy(batch []models.RawGame) bool {
	for _, rec := range batch {
		if _, ok := rec["accuracies.white"]; ok {
			return true
		}
		if _, ok := rec["accuracies.black"]; ok {
			return true
		}
	}
	return false
}

// Perspective returns the side the identity played. Matching is exact.
func Perspective(rec models.RawGame, identity string) (string, error) {
	white, _ := rec.String("white.username")
	black, _ := rec.String("black.username")
	isWhite := white == identity
	isBlack := black == identity
	switch {
	case isWhite && !isBlack:
		return sideWhite, nil
	case isBlack && !isWhite:
		return sideBlack, nil
	}
	return "", ErrAmbiguousPerspective
}

// EndTime converts the epoch-seconds end_time to UTC. Zero when absent.
func EndTime(rec models.RawGame) time.Time {
	secs, ok := rec.Int("end_time")
	if !ok {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// Dedupe keeps the first record per uuid (or url when uuid is missing).
func Dedupe(batch []models.RawGame) []models.RawGame {
	seen := make(map[string]struct{}, len(batch))
	out := make([]models.RawGame, 0, len(batch))
	for _, rec := range batch {
		key, ok := rec.String("uuid")
		if !ok || key == "" {
			key, ok = rec.String("url")
		}
		if ok && key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, rec)
	}
	return out
}

func other(side string) string {
	if side == sideWhite {
		return sideBlack
	}
	return sideWhite
}

func intField(rec models.RawGame, key string) int {
	v, _ := rec.Int(key)
	return int(v)
}

func floatField(rec models.RawGame, key string) *float64 {
	v, ok := rec.Float(key)
	if !ok {
		return nil
	}
	return &v
}
