package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"banquet-planner/internal/beo"
)

// parseOrderMessage reads an order typed into the chat:
//
//	Event: Harvest Gala
//	Date: 2026-11-07
//	Guests: 120
//	Notes: two vegan plates
//	Caesar Salad: 12
//	Seared Salmon x 10
//
// Menu quantities are passed through unparsed for the order builder to check.
func parseOrderMessage(text string) (beo.Event, error) {
	var ev beo.Event
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(raw), "-•*"))
		if line == "" {
			continue
		}

		if key, val, ok := strings.Cut(line, ":"); ok {
			val = strings.TrimSpace(val)
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "event", "event name":
				ev.Name = val
				continue
			case "date":
				ev.Date = val
				continue
			case "guests", "guest count":
				n, err := strconv.Atoi(val)
				if err != nil {
					return beo.Event{}, fmt.Errorf("invalid guest count %q", val)
				}
				ev.GuestCount = n
				continue
			case "notes", "special requirements":
				ev.SpecialRequirements = val
				continue
			}
		}

		row, ok := parseOrderRow(line)
		if !ok {
			return beo.Event{}, fmt.Errorf("could not read line %q, expected \"Recipe: quantity\"", line)
		}
		ev.Items = append(ev.Items, row)
	}

	if ev.Name == "" {
		return beo.Event{}, errors.New("missing \"Event:\" line")
	}
	return ev, nil
}

// parseOrderRow reads "Recipe: 12" or "Recipe x 12". The last separator
// wins so recipe names may contain either.
func parseOrderRow(line string) (beo.OrderRow, bool) {
	if i := strings.LastIndex(line, ":"); i > 0 {
		return beo.OrderRow{
			Recipe:   strings.TrimSpace(line[:i]),
			Quantity: beo.Quantity(strings.TrimSpace(line[i+1:])),
		}, true
	}
	if i := strings.LastIndex(strings.ToLower(line), " x "); i > 0 {
		return beo.OrderRow{
			Recipe:   strings.TrimSpace(line[:i]),
			Quantity: beo.Quantity(strings.TrimSpace(line[i+3:])),
		}, true
	}
	return beo.OrderRow{}, false
}
