package model

import (
	"fmt"
	"strings"
	"time"
)

// ExternalEvent is one item of the ticketing provider's response.  Every
// field is optional on the wire; a missing field decodes to its zero value
// and a zero value is treated as absent.
type ExternalEvent struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Date        string       `json:"date"`
	Place       []Place      `json:"place,omitempty"`
	PriceRanges []PriceRange `json:"priceRanges,omitempty"`
	Ticket      string       `json:"ticket,omitempty"`
}

// Place describes where an event happens.  Only the first place of an
// event is used.
type Place struct {
	Address        Address        `json:"address"`
	PostalCode     string         `json:"postalCode"`
	City           NamedEntity    `json:"city"`
	Country        NamedEntity    `json:"country"`
	UpcomingEvents UpcomingEvents `json:"upcomingEvents"`
	Images         []Image        `json:"images,omitempty"`
}

type Address struct {
	Line1 string `json:"line1"`
}

type NamedEntity struct {
	Name string `json:"name"`
}

// UpcomingEvents carries the provider's remaining capacity counter.  The
// provider sometimes sends it as a float such as 12.0.
type UpcomingEvents struct {
	Total float64 `json:"_total"`
}

type Image struct {
	URL string `json:"url"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FormattedEvent is the API representation of an ExternalEvent.  Pointer
// fields render as null when the provider did not supply the value.
type FormattedEvent struct {
	TicketmasterID  string     `json:"ticketmaster_id"`
	Name            string     `json:"name"`
	Date            *time.Time `json:"date"`
	Location        string     `json:"location"`
	PriceMin        *float64   `json:"price_min"`
	PriceMax        *float64   `json:"price_max"`
	TicketURL       string     `json:"ticket_url"`
	RemainingPlaces *int       `json:"remaining_places"`
	ImageURL        *string    `json:"image_url"`
}

// Format maps the event to its API representation.  It never fails: every
// missing piece becomes null or an empty location segment.
func (e ExternalEvent) Format() FormattedEvent {
	var place Place
	if len(e.Place) > 0 {
		place = e.Place[0]
	}
	var price PriceRange
	if len(e.PriceRanges) > 0 {
		price = e.PriceRanges[0]
	}

	out := FormattedEvent{
		TicketmasterID: e.ID,
		Name:           e.Name,
		Date:           parseEventDate(e.Date),
		Location:       formatLocation(place),
		TicketURL:      e.Ticket,
	}
	if price.Min != 0 {
		v := price.Min
		out.PriceMin = &v
	}
	if price.Max != 0 {
		v := price.Max
		out.PriceMax = &v
	}
	if place.UpcomingEvents.Total != 0 {
		v := int(place.UpcomingEvents.Total)
		out.RemainingPlaces = &v
	}
	if len(place.Images) > 0 && place.Images[0].URL != "" {
		v := place.Images[0].URL
		out.ImageURL = &v
	}
	return out
}

// FormatEvents maps a provider response in order.  The result is never nil.
func FormatEvents(events []ExternalEvent) []FormattedEvent {
	out := make([]FormattedEvent, 0, len(events))
	for _, e := range events {
		out = append(out, e.Format())
	}
	return out
}

// formatLocation keeps the fixed punctuation even when every part is
// missing, which yields ",  ," for an empty place.
func formatLocation(p Place) string {
	s := fmt.Sprintf("%s, %s %s, %s", p.Address.Line1, p.PostalCode, p.City.Name, p.Country.Name)
	return strings.TrimSpace(s)
}

var eventDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseEventDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
