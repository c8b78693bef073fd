package application

import (
	"regexp"
	"strings"

	"salon-client/internal/domain"
)

var separators = regexp.MustCompile(`[\s\-_/.,+&]+`)

// serviceAliases maps normalized user input to the backend's service names.
var serviceAliases = map[string]string{
	"cut":           "Haircut",
	"haircut":       "Haircut",
	"hair cut":      "Haircut",
	"hair":          "Haircut",
	"trim":          "Haircut",
	"beard":         "Beard Trim",
	"beard trim":    "Beard Trim",
	"shave":         "Shaving",
	"shaving":       "Shaving",
	"color":         "Hair Color",
	"colour":        "Hair Color",
	"hair color":    "Hair Color",
	"hair colour":   "Hair Color",
	"spa":           "Spa",
	"hair spa":      "Hair Spa",
	"facial":        "Facial",
	"massage":       "Massage",
	"mani":          "Manicure",
	"manicure":      "Manicure",
	"pedi":          "Pedicure",
	"pedicure":      "Pedicure",
	"nails":         "Nail Art",
	"nail art":      "Nail Art",
	"wax":           "Waxing",
	"waxing":        "Waxing",
	"threading":     "Threading",
	"makeup":        "Makeup",
	"make up":       "Makeup",
	"bridal":        "Bridal Makeup",
	"bridal makeup": "Bridal Makeup",
}

// NormalizeTerm lowercases s and collapses runs of separators to one space.
func NormalizeTerm(s string) string {
	return strings.TrimSpace(separators.ReplaceAllString(strings.ToLower(s), " "))
}

// CanonicalService maps user input to the backend's service name. Unknown
// terms are title-cased.
func CanonicalService(s string) string {
	n := NormalizeTerm(s)
	if n == "" {
		return ""
	}
	if c, ok := serviceAliases[n]; ok {
		return c
	}
	words := strings.Fields(n)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// CanonicalServices maps and de-duplicates names, keeping first-seen order.
func CanonicalServices(names []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(names))
	for _, n := range names {
		c := CanonicalService(n)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// MatchLocal keeps the salons whose name or any service name contains one of
// the terms, after normalization.
func MatchLocal(src []domain.Salon, terms []string) []domain.Salon {
	norm := make([]string, 0, len(terms))
	for _, t := range terms {
		if n := NormalizeTerm(t); n != "" {
			norm = append(norm, n)
		}
	}
	out := make([]domain.Salon, 0)
	for _, s := range src {
		if localHit(s, norm) {
			out = append(out, s)
		}
	}
	return out
}

func localHit(s domain.Salon, terms []string) bool {
	name := NormalizeTerm(s.Name)
	for _, t := range terms {
		if strings.Contains(name, t) {
			return true
		}
		for _, svc := range s.Services {
			if strings.Contains(NormalizeTerm(svc), t) {
				return true
			}
		}
	}
	return false
}
