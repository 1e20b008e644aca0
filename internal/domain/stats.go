package domain

// ComputeStats derives service counts and the health classification from the
// current service collection. Message and audit counts are filled in by the
// caller; this function only looks at services.
func ComputeStats(services []Service) DashboardStats {
	active := 0
	for _, s := range services {
		if s.Enabled {
			active++
		}
	}
	return DashboardStats{
		TotalServices:    len(services),
		ActiveServices:   active,
		InactiveServices: len(services) - active,
		SystemHealth:     SystemHealth(services),
	}
}

// SystemHealth classifies the service collection:
//   - critical: any critical-impact service is disabled
//   - warning: more than 50% of services disabled, or any high-impact
//     service disabled
//   - healthy: otherwise (including zero services)
//
// The critical check dominates the warning checks.
func SystemHealth(services []Service) Health {
	if len(services) == 0 {
		return HealthHealthy
	}

	inactive := 0
	highDown := false
	for _, s := range services {
		if s.Enabled {
			continue
		}
		inactive++
		switch s.Impact {
		case ImpactCritical:
			return HealthCritical
		case ImpactHigh:
			highDown = true
		}
	}

	if highDown || inactive*2 > len(services) {
		return HealthWarning
	}
	return HealthHealthy
}
