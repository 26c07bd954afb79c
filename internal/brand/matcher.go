// Package brand flags domains whose first label is lexically close to a
// well-known brand without being the brand itself.
package brand

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/ppiankov/phishlens/internal/domain"
	"github.com/ppiankov/phishlens/internal/model"
)

// MinSimilarity is the lowest ratio reported as a match
const MinSimilarity = 80

// Brand is a protected name and its legitimate registrable domains
type Brand struct {
	Name    string
	Domains []string
}

// DefaultBrands is the built-in dictionary, evaluated in this order
var DefaultBrands = []Brand{
	{Name: "google", Domains: []string{"google.com", "google.com.br"}},
	{Name: "facebook", Domains: []string{"facebook.com"}},
	{Name: "microsoft", Domains: []string{"microsoft.com", "live.com", "office.com"}},
	{Name: "apple", Domains: []string{"apple.com", "icloud.com"}},
	{Name: "paypal", Domains: []string{"paypal.com"}},
	{Name: "amazon", Domains: []string{"amazon.com", "amazon.com.br"}},
	{Name: "netflix", Domains: []string{"netflix.com"}},
	{Name: "instagram", Domains: []string{"instagram.com"}},
	{Name: "whatsapp", Domains: []string{"whatsapp.com"}},
	{Name: "bb", Domains: []string{"bb.com.br", "bancobrasil.com.br"}},
	{Name: "itau", Domains: []string{"itau.com.br"}},
	{Name: "caixa", Domains: []string{"caixa.gov.br"}},
	{Name: "bradesco", Domains: []string{"bradesco.com.br"}},
	{Name: "nubank", Domains: []string{"nubank.com.br"}},
}

// Matcher compares domains against a brand dictionary
type Matcher struct {
	brands []Brand
}

// NewMatcher creates a matcher over brands, or DefaultBrands when nil
func NewMatcher(brands []Brand) *Matcher {
	if brands == nil {
		brands = DefaultBrands
	}
	return &Matcher{brands: brands}
}

// Match returns every brand with similarity >= MinSimilarity whose name is
// not identical to the domain's first registrable label, best first.
// Ties keep dictionary order.
func (m *Matcher) Match(host string) []model.BrandMatch {
	label := strings.ToLower(domain.FirstLabel(domain.Registrable(host)))
	if label == "" {
		return nil
	}

	var matches []model.BrandMatch
	for _, b := range m.brands {
		name := strings.ToLower(b.Name)
		if label == name {
			continue
		}
		ratio := Similarity(label, name)
		if ratio >= MinSimilarity {
			matches = append(matches, model.BrandMatch{
				Brand:        b.Name,
				Similarity:   ratio,
				KnownDomains: b.Domains,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// Similarity is round(100 * (1 - distance/maxLen)) over runes
func Similarity(a, b string) int {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		maxLen = 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(d)/float64(maxLen))))
}
