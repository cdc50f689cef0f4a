package catalog

import (
	"context"
	"errors"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/rs/zerolog"
)

type fallbackSource struct {
	primary   Source
	secondary Source
	log       zerolog.Logger
}

// Fallback serves from primary and switches to secondary when primary fails.
// A not-found answer from primary is final.
func Fallback(primary, secondary Source, log zerolog.Logger) Source {
	return &fallbackSource{primary: primary, secondary: secondary, log: log}
}

func (f *fallbackSource) Items(ctx context.Context) ([]domain.MenuItem, error) {
	items, err := f.primary.Items(ctx)
	if err == nil {
		return items, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	f.log.Warn().Err(err).Msg("menu source failed, serving fallback menu")
	return f.secondary.Items(ctx)
}

func (f *fallbackSource) Item(ctx context.Context, id string) (*domain.MenuItem, error) {
	item, err := f.primary.Item(ctx, id)
	if err == nil || errors.Is(err, domain.ErrMenuItemNotFound) || ctx.Err() != nil {
		return item, err
	}
	f.log.Warn().Err(err).Str("menu_item_id", id).Msg("menu source failed, serving fallback item")
	return f.secondary.Item(ctx, id)
}
