package shop

import (
	"context"

	"github.com/mcoot/mafiagame-go/internal/dependencies/clock"
	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/storage"
)

// Cosmetic is one purchasable catalog entry
type Cosmetic struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// Config holds configuration for the shop service
type Config struct {
	Catalog []Cosmetic
}

// DefaultConfig returns the standard cosmetic catalog
func DefaultConfig() Config {
	return Config{
		Catalog: []Cosmetic{
			{ID: "fedora", Name: "Fedora", Price: 40},
			{ID: "top_hat", Name: "Top Hat", Price: 50},
			{ID: "cigar", Name: "Cigar", Price: 60},
			{ID: "monocle", Name: "Monocle", Price: 75},
			{ID: "gold_watch", Name: "Gold Watch", Price: 120},
		},
	}
}

// Service sells cosmetics against identity wallets
type Service struct {
	storage storage.Store
	clock   clock.Clock
	catalog []Cosmetic
	byID    map[string]Cosmetic
}

// New creates a new shop Service
func New(storage storage.Store, clock clock.Clock, cfg Config) *Service {
	if len(cfg.Catalog) == 0 {
		cfg.Catalog = DefaultConfig().Catalog
	}
	byID := make(map[string]Cosmetic, len(cfg.Catalog))
	for _, item := range cfg.Catalog {
		byID[item.ID] = item
	}
	return &Service{
		storage: storage,
		clock:   clock,
		catalog: cfg.Catalog,
		byID:    byID,
	}
}

// Catalog returns the purchasable cosmetics in listing order
func (s *Service) Catalog() []Cosmetic {
	return append([]Cosmetic(nil), s.catalog...)
}

// Purchase buys a cosmetic for the handle, returning the updated identity
func (s *Service) Purchase(ctx context.Context, handle model.Handle, cosmeticID string) (*model.Identity, error) {
	item, ok := s.byID[cosmeticID]
	if !ok {
		return nil, model.ErrUnknownCosmetic
	}

	identity, err := s.storage.GetIdentity(ctx, handle)
	if err != nil {
		return nil, err
	}
	for _, owned := range identity.Cosmetics {
		if owned == item.ID {
			return nil, model.ErrAlreadyOwned
		}
	}
	if identity.Wallet < item.Price {
		return nil, model.ErrInsufficientFunds
	}

	identity.Wallet -= item.Price
	identity.Cosmetics = append(identity.Cosmetics, item.ID)
	identity.UpdatedAt = s.clock.Now()
	if err := s.storage.UpdateIdentity(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}
