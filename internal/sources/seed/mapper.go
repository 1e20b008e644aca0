package seed

import (
	"time"

	"github.com/dmconta/portal/internal/domain"
)

// MapServices converts seed entries to domain services. IDs are slugs of
// the name; entries whose slug collides with an earlier entry are skipped.
func MapServices(props []ServiceProps, now time.Time) []domain.Service {
	services := make([]domain.Service, 0, len(props))
	seen := make(map[string]bool, len(props))

	for _, p := range props {
		id := domain.Slugify(p.Name)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		deps := p.Dependencies
		if deps == nil {
			deps = []string{}
		}
		services = append(services, domain.Service{
			ID:           id,
			Name:         p.Name,
			Description:  p.Description,
			Category:     p.Category,
			Impact:       domain.Impact(p.Impact),
			Dependencies: deps,
			Enabled:      p.Enabled,
			LastModified: now,
		})
	}
	return services
}

// MapMessages converts seed entries to domain messages, skipping entries
// with an empty or duplicate code.
func MapMessages(props []MessageProps, now time.Time) []domain.Message {
	messages := make([]domain.Message, 0, len(props))
	seen := make(map[string]bool, len(props))

	for _, p := range props {
		if p.Code == "" || seen[p.Code] {
			continue
		}
		seen[p.Code] = true

		messages = append(messages, domain.Message{
			Code:         p.Code,
			Message:      p.Message,
			Type:         domain.MessageType(p.Type),
			Platform:     domain.Platform(p.Platform),
			Enabled:      p.Enabled,
			Category:     p.Category,
			LastModified: now,
		})
	}
	return messages
}
