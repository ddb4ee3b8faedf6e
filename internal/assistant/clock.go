package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/sisemasexp/portal/internal/content"
)

// One of these must appear as a word for the clock to answer.
var timeKeywords = []string{"hora", "horas"}

type cityZone struct {
	name     string
	zone     string
	keywords []string
}

// Clock answers "what time is it in CITY" questions.
type Clock struct {
	cities       []cityZone
	local        *time.Location
	now          func() time.Time
	loadLocation func(string) (*time.Location, error)
}

// ClockOption customizes a Clock.
type ClockOption func(*Clock)

// WithNow replaces the time source.
func WithNow(now func() time.Time) ClockOption {
	return func(c *Clock) { c.now = now }
}

// WithLocal sets the zone used when no city is named.
func WithLocal(loc *time.Location) ClockOption {
	return func(c *Clock) {
		if loc != nil {
			c.local = loc
		}
	}
}

// WithLocationLoader replaces time.LoadLocation.
func WithLocationLoader(load func(string) (*time.Location, error)) ClockOption {
	return func(c *Clock) { c.loadLocation = load }
}

// NewClock builds a clock over the catalog's cities, checked in catalog order.
// City keywords are normalized so that "Bogotá" and "bogota" both match.
func NewClock(cities []content.City, opts ...ClockOption) *Clock {
	c := &Clock{
		local:        time.Local,
		now:          time.Now,
		loadLocation: time.LoadLocation,
	}
	for _, city := range cities {
		cz := cityZone{name: city.Name, zone: city.Zone}
		for _, kw := range city.Keywords {
			if n := Normalize(kw); n != "" {
				cz.keywords = append(cz.keywords, joinTokens(n))
			}
		}
		c.cities = append(c.cities, cz)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func joinTokens(normalized string) string {
	return strings.Join(tokens(normalized), " ")
}

// Answer returns the current time for the first city named in text, or the
// local time when none is. It reports false when text does not ask for the time.
// An unknown zone degrades to local time marked as approximate.
func (c *Clock) Answer(text string) (string, bool) {
	ts := newTokenSet(Normalize(text))
	if !ts.has(timeKeywords...) {
		return "", false
	}

	now := c.now()
	for _, city := range c.cities {
		if !ts.has(city.keywords...) {
			continue
		}
		loc, err := c.loadLocation(city.zone)
		if err != nil {
			return c.localAnswer(now) + " (hora aproximada).", true
		}
		t := now.In(loc)
		return fmt.Sprintf("En %s son las %s del %s.", city.name, t.Format("15:04"), t.Format(time.DateOnly)), true
	}
	return c.localAnswer(now) + ".", true
}

func (c *Clock) localAnswer(now time.Time) string {
	t := now.In(c.local)
	return fmt.Sprintf("La hora local es %s del %s", t.Format("15:04"), t.Format(time.DateOnly))
}

// LocalNow returns the current time in the local zone.
func (c *Clock) LocalNow() time.Time {
	return c.now().In(c.local)
}
