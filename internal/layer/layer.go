// Package layer groups markers into one toggleable overlay per category.
package layer

import (
	"fmt"

	"github.com/bbernstein/stationmap/internal/marker"
	"github.com/bbernstein/stationmap/internal/models"
)

// Group is one overlay. Markers keep insertion order.
type Group struct {
	Category models.Category `json:"-"`
	Key      string          `json:"key"`
	Name     string          `json:"name"`
	Icon     marker.Icon     `json:"icon"`
	Markers  []marker.Marker `json:"markers"`
}

// Groups holds exactly one Group per category, in models.Categories order,
// whether or not it has markers.
type Groups struct {
	ordered []*Group
	index   map[models.Category]*Group
}

func NewGroups() *Groups {
	g := &Groups{
		ordered: make([]*Group, 0, len(models.Categories)),
		index:   make(map[models.Category]*Group, len(models.Categories)),
	}
	for _, c := range models.Categories {
		style := c.Style()
		group := &Group{
			Category: c,
			Key:      style.Key,
			Name:     style.LayerName,
			Icon:     marker.IconFor(c),
			Markers:  []marker.Marker{},
		}
		g.ordered = append(g.ordered, group)
		g.index[c] = group
	}
	return g
}

// Aggregate partitions markers by category.
func Aggregate(markers []marker.Marker) (*Groups, error) {
	groups := NewGroups()
	for _, m := range markers {
		if err := groups.Add(m); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (g *Groups) Add(m marker.Marker) error {
	group, ok := g.index[m.Category]
	if !ok {
		return fmt.Errorf("marker %s has unknown category %d", m.StationID, int(m.Category))
	}
	group.Markers = append(group.Markers, m)
	return nil
}

func (g *Groups) Get(c models.Category) *Group {
	return g.index[c]
}

func (g *Groups) Ordered() []*Group {
	return g.ordered
}

func (g *Groups) Total() int {
	total := 0
	for _, group := range g.ordered {
		total += len(group.Markers)
	}
	return total
}

// Counts returns the number of markers per category key.
func (g *Groups) Counts() map[string]int {
	counts := make(map[string]int, len(g.ordered))
	for _, group := range g.ordered {
		counts[group.Key] = len(group.Markers)
	}
	return counts
}
