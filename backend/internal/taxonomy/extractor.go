package taxonomy

import (
	"regexp"
	"sort"
	"strings"

	"tesseric/backend/internal/review"
)

// Service is one catalog entry: canonical name plus its fixed category
type Service struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

var (
	// canonical service names, sorted, for deterministic iteration
	canonicalNames []string
	// lowercased canonical name -> Service
	byLowerName map[string]Service
	// canonical name -> compiled whole-word pattern
	patterns map[string]*regexp.Regexp
)

func init() {
	byLowerName = make(map[string]Service)
	patterns = make(map[string]*regexp.Regexp)

	// Categories are walked in sorted order so a name listed under more than
	// one category always resolves to the same one.
	categories := make([]string, 0, len(catalog))
	for category := range catalog {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		for _, name := range catalog[category] {
			key := strings.ToLower(name)
			if _, exists := byLowerName[key]; exists {
				continue
			}
			byLowerName[key] = Service{Name: name, Category: category}
			patterns[name] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
			canonicalNames = append(canonicalNames, name)
		}
	}
	sort.Strings(canonicalNames)
}

// Lookup resolves a service name against the catalog, case-insensitively.
// Returns the canonical entry and whether the name is known.
func Lookup(name string) (Service, bool) {
	svc, ok := byLowerName[strings.ToLower(strings.TrimSpace(name))]
	return svc, ok
}

// ExtractServices returns every catalog service mentioned in text as a
// whole word, de-duplicated and sorted by canonical name. Empty text
// yields an empty result; there are no error conditions.
func ExtractServices(text string) []Service {
	if text == "" {
		return nil
	}

	var found []Service
	for _, name := range canonicalNames {
		if patterns[name].MatchString(text) {
			found = append(found, byLowerName[strings.ToLower(name)])
		}
	}
	return found
}

// ExtractFromFinding extracts services from one finding's own text:
// title, description, and remediation are searched together.
func ExtractFromFinding(f review.Finding) []Service {
	combined := strings.Join([]string{f.Title, f.Description, f.Remediation}, " ")
	return ExtractServices(combined)
}

// ServicesForAnalysis unions service mentions across all of an analysis's
// findings, de-duplicated and sorted by canonical name.
func ServicesForAnalysis(findings []review.Finding) []Service {
	seen := make(map[string]Service)
	for _, f := range findings {
		for _, svc := range ExtractFromFinding(f) {
			seen[svc.Name] = svc
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Service, 0, len(names))
	for _, name := range names {
		result = append(result, seen[name])
	}
	return result
}
