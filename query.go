package canister

// InterfaceQuery defines criteria for filtering registered interfaces.
type InterfaceQuery struct {
	// Auto filters by registration kind. nil matches both factory-backed
	// and autowire-backed registrations.
	Auto *bool

	// Cached filters by whether a shared instance has been produced.
	// nil matches all.
	Cached *bool

	// Target filters autowire-backed registrations by their target type
	// name. Empty string matches all targets.
	Target string
}

// Query returns diagnostic information for every registered interface
// matching the criteria, in registration order.
//
// Example:
//
//	cached := true
//	infos := canister.Query(c, canister.InterfaceQuery{Cached: &cached})
func Query(c Container, query InterfaceQuery) []InterfaceInfo {
	var results []InterfaceInfo

	for _, id := range c.InstanceList() {
		info := c.Inspect(id)

		if query.Auto != nil && info.Auto != *query.Auto {
			continue
		}

		if query.Cached != nil && info.Cached != *query.Cached {
			continue
		}

		if query.Target != "" && info.Target != query.Target {
			continue
		}

		results = append(results, info)
	}

	return results
}

// QueryIDs returns the identifiers of interfaces matching the criteria.
func QueryIDs(c Container, query InterfaceQuery) []string {
	results := Query(c, query)

	ids := make([]string, len(results))
	for i, info := range results {
		ids[i] = info.ID
	}

	return ids
}

// FindCached returns every interface whose shared instance has been produced.
func FindCached(c Container) []InterfaceInfo {
	cached := true

	return Query(c, InterfaceQuery{Cached: &cached})
}

// FindAuto returns every autowire-backed registration.
func FindAuto(c Container) []InterfaceInfo {
	auto := true

	return Query(c, InterfaceQuery{Auto: &auto})
}

// FindByTarget returns the autowire-backed registrations for a target type.
func FindByTarget(c Container, typeName string) []InterfaceInfo {
	return Query(c, InterfaceQuery{Target: typeName})
}
