// Package flightparse extracts flight records embedded in assistant chat
// replies.
//
// The upstream text generator signals machine-readable flight data by
// including the Marker token followed by a fenced JSON block. Extraction is
// JSON-first: fenced blocks are decoded as either a flight array or a
// {"flights": [...]} wrapper, and the first block yielding at least one
// valid flight wins. When no JSON block parses, a regex heuristic scans
// blank-line paragraphs for route-shaped text. The whole pass is best
// effort and never returns an error: malformed blocks are skipped and a
// flight-free message yields an empty list.
package flightparse

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tripdesk/tripdesk/internal/models"
)

// Marker is the sentinel the assistant emits when a reply carries flight
// data. It is a fixed contract with the prompt in the assistant package,
// not configurable per call.
const Marker = "[[FLIGHT_DATA]]"

var (
	jsonFenceRe    = regexp.MustCompile("(?is)```json(.*?)```")
	genericFenceRe = regexp.MustCompile("(?s)```(.*?)```")
	dateRangeRe    = regexp.MustCompile(`(?i)\[Dates?:\s*[\d\-]+\s+to\s+[\d\-]+\]`)

	paragraphRe = regexp.MustCompile(`\n{2,}`)
	routeRe     = regexp.MustCompile(`(?i)([A-Za-z]{3,})\s*(?:to|→|➡|->|—|–|-)\s*([A-Za-z]{3,})`)

	departRe   = regexp.MustCompile(`(?i)depart(?:ure)?[:\-\s]*([^\n]+)`)
	outboundRe = regexp.MustCompile(`(?i)outbound[:\-\s]*([^\n]+)`)
	arriveRe   = regexp.MustCompile(`(?i)arriv(?:al|es)[:\-\s]*([^\n]+)`)
	landingRe  = regexp.MustCompile(`(?i)landing[:\-\s]*([^\n]+)`)
	airlineRe  = regexp.MustCompile(`(?i)airline[:\-\s]*([^\n]+)`)
	withRe     = regexp.MustCompile(`(?i)with\s+([A-Za-z\s]+)\b`)
	numberRe   = regexp.MustCompile(`\b([A-Z]{2}\d{2,4})\b`)

	timeOfDayRe = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s?(?:AM|PM)?)`)
	isoRe       = regexp.MustCompile(`\d{4}-\d{2}-\d{2}(?:[T\s]\d{2}:\d{2}(?::\d{2})?)?`)
	moneyRe     = regexp.MustCompile(`(?i)(?:(USD|EUR|GBP|CAD|AUD|INR|JPY|SGD|CHF|CNY)\s*)?\$?\s*([\d,]+(?:\.\d+)?)`)
)

// now is swapped out in tests; normalization and time-of-day anchoring
// depend on the current instant.
var now = time.Now

// rawFlight is the wire shape of a single flight candidate before
// normalization. All fields are optional at this stage.
type rawFlight struct {
	ID           string        `json:"id"`
	From         string        `json:"from"`
	To           string        `json:"to"`
	Departure    string        `json:"departure"`
	Arrival      string        `json:"arrival"`
	Airline      string        `json:"airline"`
	Number       string        `json:"number"`
	Confirmation string        `json:"confirmation"`
	Cost         *models.Money `json:"cost"`
	Notes        string        `json:"notes"`
}

// ExtractPayload returns the display content of a chat reply with flight
// payload artifacts stripped, plus any flights the reply carried.
//
// Extraction only runs when the reply contains Marker; without it the
// content is merely cleaned and no parsing is attempted, even if the text
// looks flight-shaped. When the marker is present the full detection pass
// runs over the entire content, not just the portion after the marker.
func ExtractPayload(content string) (cleanContent string, flights []models.Flight) {
	if !strings.Contains(content, Marker) {
		return stripArtifacts(content), nil
	}
	return stripArtifacts(content), DetectAndParse(content)
}

// DetectAndParse extracts flight records from content. The JSON pass takes
// strict precedence: the text fallback only runs when no JSON block yields
// a flight, and results from the two passes are never merged.
func DetectAndParse(content string) []models.Flight {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	if flights := parseJSONFlights(content); len(flights) > 0 {
		return flights
	}
	return parseTextFlights(content)
}

// stripArtifacts removes the marker, fenced code blocks, and inline
// [Dates: ... to ...] annotations.
func stripArtifacts(content string) string {
	cleaned := strings.ReplaceAll(content, Marker, "")
	cleaned = jsonFenceRe.ReplaceAllString(cleaned, "")
	cleaned = genericFenceRe.ReplaceAllString(cleaned, "")
	cleaned = dateRangeRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// jsonBlocks collects candidate JSON texts in document order: ```json
// fences first, generic fences only when no tagged fence exists, and the
// whole content as a final candidate when it starts like a JSON value.
func jsonBlocks(content string) []string {
	var blocks []string

	tagged := jsonFenceRe.FindAllStringSubmatch(content, -1)
	for _, m := range tagged {
		blocks = append(blocks, strings.TrimSpace(m[1]))
	}
	if len(tagged) == 0 {
		for _, m := range genericFenceRe.FindAllStringSubmatch(content, -1) {
			blocks = append(blocks, strings.TrimSpace(m[1]))
		}
	}

	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		blocks = append(blocks, trimmed)
	}
	return blocks
}

// decodeCandidates decodes one block as either a flight array, a wrapper
// object with a "flights" array, or neither.
func decodeCandidates(block string) ([]rawFlight, bool) {
	trimmed := strings.TrimSpace(block)
	switch {
	case strings.HasPrefix(trimmed, "["):
		var arr []rawFlight
		if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
			return nil, false
		}
		return arr, true
	case strings.HasPrefix(trimmed, "{"):
		var wrapper struct {
			Flights []rawFlight `json:"flights"`
		}
		if err := json.Unmarshal([]byte(trimmed), &wrapper); err != nil {
			return nil, false
		}
		if wrapper.Flights == nil {
			return nil, false
		}
		return wrapper.Flights, true
	}
	return nil, false
}

func parseJSONFlights(content string) []models.Flight {
	for _, block := range jsonBlocks(content) {
		raws, ok := decodeCandidates(block)
		if !ok {
			continue
		}
		var flights []models.Flight
		for _, raw := range raws {
			if flight, ok := normalize(raw, true); ok {
				flights = append(flights, flight)
			}
		}
		// First block with a usable flight wins; later blocks are not merged.
		if len(flights) > 0 {
			return flights
		}
	}
	return nil
}

// normalize validates a raw candidate and fills generated fields. From and
// To are required. defaultTimes controls whether missing departure/arrival
// fall back to the current instant: the JSON path defaults them, the text
// path leaves unparseable times empty.
func normalize(raw rawFlight, defaultTimes bool) (models.Flight, bool) {
	from := strings.TrimSpace(raw.From)
	to := strings.TrimSpace(raw.To)
	if from == "" || to == "" {
		return models.Flight{}, false
	}

	flight := models.Flight{
		ID:           raw.ID,
		From:         from,
		To:           to,
		Departure:    raw.Departure,
		Arrival:      raw.Arrival,
		Airline:      strings.TrimSpace(raw.Airline),
		Number:       strings.TrimSpace(raw.Number),
		Confirmation: strings.TrimSpace(raw.Confirmation),
		Cost:         raw.Cost,
		Notes:        raw.Notes,
	}
	if flight.ID == "" {
		flight.ID = uuid.New().String()
	}
	if flight.Cost != nil && flight.Cost.Currency == "" {
		flight.Cost.Currency = "USD"
	}
	if defaultTimes {
		nowISO := now().UTC().Format(time.RFC3339)
		if flight.Departure == "" {
			flight.Departure = nowISO
		}
		if flight.Arrival == "" {
			flight.Arrival = nowISO
		}
	}
	return flight, true
}

// parseTextFlights is the natural-language fallback. It splits content on
// blank lines and mines each route-shaped paragraph for labeled times, an
// airline, a flight number token, and a money token. The full paragraph is
// kept as notes since the heuristic is lossy.
func parseTextFlights(content string) []models.Flight {
	var flights []models.Flight

	for _, segment := range paragraphRe.Split(content, -1) {
		route := routeRe.FindStringSubmatch(segment)
		if route == nil {
			continue
		}

		raw := rawFlight{
			From:  route[1],
			To:    route[2],
			Notes: strings.TrimSpace(segment),
		}

		if line := firstMatch(segment, departRe, outboundRe, timeOfDayRe); line != "" {
			raw.Departure = parseDateLike(line)
		}
		if line := firstMatch(segment, arriveRe, landingRe); line != "" {
			raw.Arrival = parseDateLike(line)
		}
		raw.Airline = strings.TrimSpace(firstMatch(segment, airlineRe, withRe))
		if m := numberRe.FindStringSubmatch(segment); m != nil {
			raw.Number = m[1]
		}
		raw.Cost = coerceMoney(segment)

		if flight, ok := normalize(raw, false); ok {
			flights = append(flights, flight)
		}
	}
	return flights
}

// firstMatch returns the first capture group of the first pattern that
// matches text.
func firstMatch(text string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// coerceMoney finds a money-like token: an optional known currency code or
// a $ sign, then a number with optional thousands separators. Currency
// defaults to USD when only $ or a bare number is present.
func coerceMoney(text string) *models.Money {
	m := moneyRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
	if err != nil {
		return nil
	}
	currency := strings.ToUpper(m[1])
	if currency == "" {
		currency = "USD"
	}
	return &models.Money{Amount: amount, Currency: currency}
}

// parseDateLike resolves a text fragment to an RFC3339 datetime: an
// embedded YYYY-MM-DD[THH:MM[:SS]] pattern is parsed directly, otherwise a
// bare time of day is anchored to today's date. Returns "" when nothing
// parses.
func parseDateLike(value string) string {
	cleaned := strings.TrimSpace(value)

	if iso := isoRe.FindString(cleaned); iso != "" {
		layouts := []string{
			"2006-01-02T15:04:05",
			"2006-01-02T15:04",
			"2006-01-02 15:04:05",
			"2006-01-02 15:04",
			"2006-01-02",
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, iso); err == nil {
				return t.UTC().Format(time.RFC3339)
			}
		}
	}

	if m := timeOfDayRe.FindStringSubmatch(cleaned); m != nil {
		clock := strings.ToUpper(strings.TrimSpace(m[1]))
		for _, layout := range []string{"3:04 PM", "3:04PM", "15:04"} {
			t, err := time.Parse(layout, clock)
			if err != nil {
				continue
			}
			base := now().UTC()
			anchored := time.Date(base.Year(), base.Month(), base.Day(),
				t.Hour(), t.Minute(), 0, 0, time.UTC)
			return anchored.Format(time.RFC3339)
		}
	}

	return ""
}
