// pkg/sections/parser.go
package sections

import (
	"errors"
	"regexp"
	"strings"
)

// Marker identifies a labeled region of model output.
type Marker int

const (
	MarkerNone Marker = iota
	MarkerSummary
	MarkerBody
	MarkerCategory
	MarkerMissingInfo
)

func (m Marker) String() string {
	switch m {
	case MarkerSummary:
		return "summary"
	case MarkerBody:
		return "body"
	case MarkerCategory:
		return "category"
	case MarkerMissingInfo:
		return "missingInfo"
	default:
		return "none"
	}
}

// Categories accepted in the "Category:" section.
const (
	CategoryInvestmentUpdate = "investment-update"
	CategoryTaxPlanning      = "tax-planning"
	CategoryGeneralAdvice    = "general-advice"
	CategoryOnboarding       = "onboarding"

	// CategoryGeneralEnquiry is the fallback used by the advisor dashboard.
	CategoryGeneralEnquiry = "general-enquiry"
)

// ErrIncompleteResponse is returned by Validate when the summary or the body is missing.
var ErrIncompleteResponse = errors.New("response is missing required sections")

// markerTable is matched in order against the start of every line.
var markerTable = []struct {
	prefix string
	marker Marker
}{
	{"Summary:", MarkerSummary},
	{"Email Response:", MarkerBody},
	{"Proposal:", MarkerBody},
	{"Category:", MarkerCategory},
	{"Missing Information:", MarkerMissingInfo},
}

var (
	newlineRun   = regexp.MustCompile(`\n+`)
	bulletPrefix = regexp.MustCompile(`^-\s*`)
)

// Result is the structured form of a generated response.
type Result struct {
	Summary       string   `json:"summary"`
	EmailResponse string   `json:"emailResponse"`
	Category      string   `json:"category"`
	MissingInfo   []string `json:"missingInfo"`
}

// Validate reports ErrIncompleteResponse unless both summary and body are present.
func (r Result) Validate() error {
	if r.Summary == "" || r.EmailResponse == "" {
		return ErrIncompleteResponse
	}
	return nil
}

type Parser struct {
	defaultCategory string
	categories      map[string]struct{}
}

type Option func(*Parser)

// WithDefaultCategory sets the category used when none (or an unknown one) is found.
func WithDefaultCategory(category string) Option {
	return func(p *Parser) {
		p.defaultCategory = category
	}
}

// WithCategories replaces the accepted category set.
func WithCategories(categories ...string) Option {
	return func(p *Parser) {
		p.categories = make(map[string]struct{}, len(categories))
		for _, c := range categories {
			p.categories[strings.ToLower(c)] = struct{}{}
		}
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{defaultCategory: CategoryGeneralAdvice}
	WithCategories(CategoryInvestmentUpdate, CategoryTaxPlanning, CategoryGeneralAdvice, CategoryOnboarding)(p)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse splits text with the default parser.
func Parse(text string) Result {
	return defaultParser.Parse(text)
}

// Parse scans text line by line. A line that starts with a marker closes the
// current section and opens a new one; every other line belongs to the open
// section, or is dropped while no section is open.
func (p *Parser) Parse(text string) Result {
	result := Result{
		Category:    p.defaultCategory,
		MissingInfo: []string{},
	}
	if text == "" {
		return result
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")

	state := MarkerNone
	var buf []string

	for _, line := range strings.Split(text, "\n") {
		if marker, rest, ok := matchMarker(line); ok {
			p.flush(&result, state, buf)
			state = marker
			buf = []string{rest}
			continue
		}
		if state != MarkerNone {
			buf = append(buf, line)
		}
	}
	p.flush(&result, state, buf)

	return result
}

func matchMarker(line string) (Marker, string, bool) {
	for _, m := range markerTable {
		if strings.HasPrefix(line, m.prefix) {
			return m.marker, strings.TrimPrefix(line, m.prefix), true
		}
	}
	return MarkerNone, "", false
}

func (p *Parser) flush(result *Result, state Marker, buf []string) {
	if state == MarkerNone {
		return
	}
	content := strings.TrimSpace(strings.Join(buf, "\n"))

	switch state {
	case MarkerSummary:
		result.Summary = newlineRun.ReplaceAllString(content, " ")
	case MarkerBody:
		result.EmailResponse = content
	case MarkerCategory:
		category := strings.ToLower(content)
		if p.IsValidCategory(category) {
			result.Category = category
		}
	case MarkerMissingInfo:
		result.MissingInfo = splitItems(content)
	}
}

// IsValidCategory reports whether category is in the accepted set.
func (p *Parser) IsValidCategory(category string) bool {
	_, ok := p.categories[category]
	return ok
}

func splitItems(content string) []string {
	items := []string{}
	for _, line := range strings.Split(content, "\n") {
		item := strings.TrimSpace(line)
		if item == "" {
			continue
		}
		item = bulletPrefix.ReplaceAllString(item, "")
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}
