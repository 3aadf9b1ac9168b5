package app

import (
	"context"

	"example/chess-history/app/logging"
	"example/chess-history/app/models"
)

// ArchiveSource is the slice of ChessClient the pipeline needs.
type ArchiveSource interface {
	ListArchives(ctx context.Context, identity string) []models.ArchiveRef
	FetchByLocator(ctx context.Context, locator string) []models.RawGame
	MonthURL(identity string, year, month int) string
	ResolveLocator(identity, locator string) (models.ArchiveRef, error)
}

// Pipeline resolves archives, fetches them one at a time and normalizes
// each batch. It keeps no state between calls.
type Pipeline struct {
	src  ArchiveSource
	norm Normalizer
	log  *logging.Logger
}

func NewPipeline(src ArchiveSource) *Pipeline {
	return &Pipeline{src: src, norm: NewNormalizer(), log: logging.Named("pipeline")}
}

// Ingest always returns a table, possibly empty. Failed months are skipped.
func (p *Pipeline) Ingest(ctx context.Context, identity string, sel models.Selection) models.GameTable {
	switch sel.Kind() {
	case models.SelectLocator:
		if _, err := p.src.ResolveLocator(identity, sel.URL); err != nil {
			p.log.Error().Err(err).Str("identity", identity).Msg("ingest skipped")
			return emptyTable(identity)
		}
		return p.ingestLocators(ctx, identity, []string{sel.URL})
	case models.SelectMonth:
		return p.ingestLocators(ctx, identity, []string{p.src.MonthURL(identity, sel.Year, sel.Month)})
	case models.SelectYear:
		var locators []string
		for _, ref := range p.src.ListArchives(ctx, identity) {
			if ref.Year == sel.Year {
				locators = append(locators, ref.URL)
			}
		}
		return p.ingestLocators(ctx, identity, locators)
	}

	p.log.Error().Err(ErrInvalidSelection).Str("identity", identity).Str("selection", sel.String()).Msg("ingest skipped")
	return emptyTable(identity)
}

func (p *Pipeline) ingestLocators(ctx context.Context, identity string, locators []string) models.GameTable {
	out := emptyTable(identity)
	for _, loc := range locators {
		if err := ctx.Err(); err != nil {
			p.log.Warn().Err(err).Str("identity", identity).Str("url", loc).Msg("ingest stopped early")
			break
		}
		raw := p.src.FetchByLocator(ctx, loc)
		if len(raw) == 0 {
			continue
		}
		out.Append(p.norm.Clean(raw, identity))
	}
	p.log.Debug().
		Str("identity", identity).
		Int("units", len(locators)).
		Int("games", out.Len()).
		Int("excluded", out.Excluded).
		Msg("ingest complete")
	return out
}

func emptyTable(identity string) models.GameTable {
	return models.GameTable{Identity: identity, Games: []models.CleanedGame{}}
}
