package domain

import "testing"

func TestSystemHealth(t *testing.T) {
	tests := []struct {
		name     string
		services []Service
		want     Health
	}{
		{
			name:     "zero services is healthy",
			services: nil,
			want:     HealthHealthy,
		},
		{
			name: "all enabled is healthy",
			services: []Service{
				{ID: "a", Enabled: true, Impact: ImpactCritical},
				{ID: "b", Enabled: true, Impact: ImpactLow},
			},
			want: HealthHealthy,
		},
		{
			name: "disabled critical service is critical",
			services: []Service{
				{ID: "a", Enabled: false, Impact: ImpactCritical},
				{ID: "b", Enabled: true, Impact: ImpactLow},
			},
			want: HealthCritical,
		},
		{
			name: "disabled high impact service is warning",
			services: []Service{
				{ID: "a", Enabled: false, Impact: ImpactHigh},
				{ID: "b", Enabled: true, Impact: ImpactLow},
				{ID: "c", Enabled: true, Impact: ImpactLow},
			},
			want: HealthWarning,
		},
		{
			name: "critical dominates high",
			services: []Service{
				{ID: "a", Enabled: false, Impact: ImpactHigh},
				{ID: "b", Enabled: false, Impact: ImpactCritical},
			},
			want: HealthCritical,
		},
		{
			name: "more than half disabled is warning",
			services: []Service{
				{ID: "a", Enabled: false, Impact: ImpactLow},
				{ID: "b", Enabled: false, Impact: ImpactLow},
				{ID: "c", Enabled: true, Impact: ImpactLow},
			},
			want: HealthWarning,
		},
		{
			name: "exactly half disabled is healthy",
			services: []Service{
				{ID: "a", Enabled: false, Impact: ImpactLow},
				{ID: "b", Enabled: true, Impact: ImpactLow},
			},
			want: HealthHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SystemHealth(tt.services); got != tt.want {
				t.Errorf("SystemHealth() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeStatsConsistency(t *testing.T) {
	collections := [][]Service{
		nil,
		{{ID: "a", Enabled: true}},
		{{ID: "a", Enabled: true}, {ID: "b", Enabled: false}},
		{{ID: "a", Enabled: false}, {ID: "b", Enabled: false}, {ID: "c", Enabled: true}},
	}

	for _, services := range collections {
		stats := ComputeStats(services)
		if stats.ActiveServices+stats.InactiveServices != stats.TotalServices {
			t.Errorf("active(%d) + inactive(%d) != total(%d)",
				stats.ActiveServices, stats.InactiveServices, stats.TotalServices)
		}
		if stats.TotalServices != len(services) {
			t.Errorf("TotalServices = %d, want %d", stats.TotalServices, len(services))
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Auth", want: "auth"},
		{name: "spaces to hyphens", in: "Payment Gateway", want: "payment-gateway"},
		{name: "collapses whitespace", in: "  User   Profile  ", want: "user-profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
