package models

import "fmt"

type Category int

const (
	CategoryHealthy Category = iota
	CategoryLow
	CategoryEmpty
	CategoryOutOfOrder
	CategoryComingSoon
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryHealthy,
	CategoryLow,
	CategoryEmpty,
	CategoryOutOfOrder,
	CategoryComingSoon,
}

// IconShape is a Font Awesome glyph class.
type IconShape string

const (
	IconBicycle IconShape = "fa-bicycle"
	IconTools   IconShape = "fa-tools"
	IconClock   IconShape = "fa-clock"
)

// CategoryStyle is the fixed visual identity of a category.
type CategoryStyle struct {
	Key        string
	LayerName  string
	LegendText string
	Icon       IconShape
	Color      string
}

var categoryStyles = map[Category]CategoryStyle{
	CategoryHealthy:    {Key: "Healthy", LayerName: "Healthy Stations", LegendText: "Healthy", Icon: IconBicycle, Color: "green"},
	CategoryLow:        {Key: "Low", LayerName: "Low Stations", LegendText: "Low", Icon: IconBicycle, Color: "orange"},
	CategoryEmpty:      {Key: "Empty", LayerName: "Empty Stations", LegendText: "Empty", Icon: IconBicycle, Color: "red"},
	CategoryOutOfOrder: {Key: "OutOfOrder", LayerName: "Out of Order", LegendText: "Out of Order", Icon: IconTools, Color: "gray"},
	CategoryComingSoon: {Key: "ComingSoon", LayerName: "Coming Soon", LegendText: "Coming Soon", Icon: IconClock, Color: "blue"},
}

func (c Category) String() string {
	if s, ok := categoryStyles[c]; ok {
		return s.Key
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

func (c Category) Valid() bool {
	_, ok := categoryStyles[c]
	return ok
}

// Style returns the display metadata for c. Unknown categories get a zero
// style.
func (c Category) Style() CategoryStyle {
	return categoryStyles[c]
}
