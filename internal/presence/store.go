package presence

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"nilgate/internal/geo"
	dErrors "nilgate/pkg/domain-errors"
)

// ErrHotspotNotFound is a configuration error: a deal without a hotspot can
// never be checked into.
var ErrHotspotNotFound = dErrors.New(dErrors.CodeConfiguration, "hotspot not found")

// HotspotStore holds hotspots keyed by deal id.
type HotspotStore struct {
	mu       sync.RWMutex
	hotspots map[string]Hotspot
}

func NewHotspotStore() *HotspotStore {
	return &HotspotStore{hotspots: make(map[string]Hotspot)}
}

// Register adds a hotspot. Re-registering a deal is a conflict since
// hotspots never change after configuration.
func (s *HotspotStore) Register(_ context.Context, h Hotspot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.hotspots[h.DealID]; exists {
		return dErrors.New(dErrors.CodeConflict, "hotspot already registered for deal "+h.DealID)
	}
	s.hotspots[h.DealID] = h
	return nil
}

func (s *HotspotStore) Get(_ context.Context, dealID string) (Hotspot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotspots[strings.TrimSpace(dealID)]
	if !ok {
		return Hotspot{}, dErrors.Wrap(ErrHotspotNotFound, dErrors.CodeConfiguration, "hotspot not found for deal "+dealID)
	}
	return h, nil
}

type hotspotRecord struct {
	DealID       string  `yaml:"deal_id"`
	Name         string  `yaml:"name"`
	Lat          float64 `yaml:"lat"`
	Lng          float64 `yaml:"lng"`
	RadiusMeters float64 `yaml:"radius_meters"`
	Payout       string  `yaml:"payout"`
}

// LoadHotspots reads a seed file:
//
//	hotspots:
//	  - deal_id: deal-1
//	    name: Campus Coffee
//	    lat: 37.8719
//	    lng: -122.2585
//	    radius_meters: 50
//	    payout: "25.00"
func LoadHotspots(r io.Reader) ([]Hotspot, error) {
	var file struct {
		Hotspots []hotspotRecord `yaml:"hotspots"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode hotspots: %w", err)
	}

	out := make([]Hotspot, 0, len(file.Hotspots))
	for i, rec := range file.Hotspots {
		payout := decimal.Zero
		if rec.Payout != "" {
			p, err := decimal.NewFromString(rec.Payout)
			if err != nil {
				return nil, fmt.Errorf("hotspot %d: invalid payout: %w", i, err)
			}
			payout = p
		}
		h, err := NewHotspot(rec.DealID, rec.Name, geo.Coordinate{Lat: rec.Lat, Lng: rec.Lng}, rec.RadiusMeters, payout)
		if err != nil {
			return nil, fmt.Errorf("hotspot %d: %w", i, err)
		}
		out = append(out, h)
	}
	return out, nil
}
