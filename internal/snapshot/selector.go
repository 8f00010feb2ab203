package snapshot

import "regexp"

// FilterInstances returns the instances that pass both filters: the
// marker tag check when taggedOnly is set, and the identifier pattern
// when pattern is non-nil (nil matches everything). Input order is
// preserved. An empty result is not an error.
func FilterInstances(instances []Instance, taggedOnly bool, pattern *regexp.Regexp) []Instance {
	var filtered []Instance
	for _, inst := range instances {
		if taggedOnly && !inst.MarkedForCopy() {
			continue
		}
		if pattern != nil && !pattern.MatchString(inst.ID) {
			continue
		}
		filtered = append(filtered, inst)
	}
	return filtered
}
