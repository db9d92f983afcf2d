package catalog

import "path"

// Rule infers dependencies for every service whose name matches a pattern.
// Match uses path.Match syntax: * matches any sequence, ? any single
// character.
type Rule struct {
	Match     string   `yaml:"match"`
	DependsOn []string `yaml:"dependsOn"`
}

// Matches reports whether the rule applies to name. Invalid patterns never
// match.
func (r Rule) Matches(name string) bool {
	if r.Match == "" {
		return false
	}
	matched, err := path.Match(r.Match, name)
	if err != nil {
		return false
	}
	return matched
}

// DefaultRules returns the rule table used when a catalog declares none.
// Edge-facing and background services authenticate through the root
// authentication service; domain services are reached through it as well.
func DefaultRules() []Rule {
	return []Rule{
		{Match: "*-gateway", DependsOn: []string{"authentication-service"}},
		{Match: "*-frontend", DependsOn: []string{"authentication-service"}},
		{Match: "*-worker", DependsOn: []string{"authentication-service"}},
		{Match: "*-service", DependsOn: []string{"authentication-service"}},
	}
}

// inferDependencies returns the dependencies of entry: its explicit list when
// declared, otherwise the list of the first matching rule with self
// references removed. Unknown names are kept; the graph builder drops them.
func inferDependencies(entry ServiceEntry, rules []Rule) []string {
	if entry.DependsOn != nil {
		return append(make([]string, 0, len(entry.DependsOn)), entry.DependsOn...)
	}

	for _, rule := range rules {
		if !rule.Matches(entry.Name) {
			continue
		}
		deps := make([]string, 0, len(rule.DependsOn))
		for _, dep := range rule.DependsOn {
			if dep != entry.Name {
				deps = append(deps, dep)
			}
		}
		return deps
	}
	return nil
}
