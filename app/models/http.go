package models

import "encoding/json"

// Models received from chess.com

type ArchiveIndex struct {
	Archives []string `json:"archives"`
}

// MonthlyGames is nil-Games when the body had no "games" key.
type MonthlyGames struct {
	Games []json.RawMessage `json:"games"`
}

type Profile struct {
	Username string `json:"username"`
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Country  string `json:"country"`
	Joined   int64  `json:"joined"`
	LastSeen int64  `json:"last_online"`
	Status   string `json:"status"`
}

// RawGame is one game flattened one level deep, e.g. "white.rating" or
// "accuracies.black". Numbers are json.Number.
type RawGame map[string]any

// FlattenGame decodes one game object and lifts nested objects one level.
func FlattenGame(data json.RawMessage) (RawGame, error) {
	var obj map[string]any
	if err := decodeNumbers(data, &obj); err != nil {
		return nil, err
	}
	out := make(RawGame, len(obj))
	for k, v := range obj {
		nested, ok := v.(map[string]any)
		if !ok {
			out[k] = v
			continue
		}
		for nk, nv := range nested {
			out[k+"."+nk] = nv
		}
	}
	return out, nil
}

// Clone returns a shallow copy.
func (g RawGame) Clone() RawGame {
	out := make(RawGame, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

func (g RawGame) String(key string) (string, bool) {
	s, ok := g[key].(string)
	return s, ok
}

func (g RawGame) Int(key string) (int64, bool) {
	switch v := g[key].(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		if f, err := v.Float64(); err == nil {
			return int64(f), true
		}
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func (g RawGame) Float(key string) (float64, bool) {
	switch v := g[key].(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
