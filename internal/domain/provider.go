package domain

import (
	"errors"
	"fmt"
)

// ServiceType represents the kind of bookable resource
type ServiceType string

const (
	ServiceTypeDJ             ServiceType = "dj"
	ServiceTypePhotoboothUnit ServiceType = "photobooth_unit"
)

// Valid returns true for a known service type
func (st ServiceType) Valid() bool {
	return st == ServiceTypeDJ || st == ServiceTypePhotoboothUnit
}

// DailyCapacity returns the maximum number of active bookings
// a provider of this type may hold on a single date
func (st ServiceType) DailyCapacity() int {
	switch st {
	case ServiceTypeDJ:
		return DJDailyCapacity
	case ServiceTypePhotoboothUnit:
		return UnitDailyCapacity
	default:
		return 0
	}
}

// Provider represents a bookable resource: a DJ or a specific photobooth unit
// Providers are configured, not created via API
type Provider struct {
	ID         string
	Type       ServiceType
	Name       string
	HourlyRate float64 // цена за час (для диджеев)
	DailyRate  float64 // цена за день (для фотобудок)
}

var (
	// ErrProviderNotFound возвращается, когда провайдер не найден в реестре
	ErrProviderNotFound = errors.New("domain: provider not found")

	// ErrUnknownServiceType возвращается при неизвестном типе услуги
	ErrUnknownServiceType = errors.New("domain: unknown service type")

	// ErrDuplicateProvider возвращается при дублировании ID провайдера в конфигурации
	ErrDuplicateProvider = errors.New("domain: duplicate provider id")
)

// ProviderRegistry реестр бронируемых ресурсов, собирается из конфигурации при старте
type ProviderRegistry struct {
	providers map[string]*Provider
	order     []string
}

// NewProviderRegistry создает реестр из списка провайдеров с валидацией
func NewProviderRegistry(providers []Provider) (*ProviderRegistry, error) {
	r := &ProviderRegistry{
		providers: make(map[string]*Provider, len(providers)),
		order:     make([]string, 0, len(providers)),
	}

	for i := range providers {
		p := providers[i]
		if !p.Type.Valid() {
			return nil, fmt.Errorf("%w: %q (provider %s)", ErrUnknownServiceType, p.Type, p.ID)
		}
		if _, exists := r.providers[p.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProvider, p.ID)
		}
		r.providers[p.ID] = &p
		r.order = append(r.order, p.ID)
	}

	return r, nil
}

// Get возвращает провайдера по ID
func (r *ProviderRegistry) Get(id string) (*Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, id)
	}
	return p, nil
}

// List возвращает всех провайдеров в порядке конфигурации
func (r *ProviderRegistry) List() []*Provider {
	result := make([]*Provider, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.providers[id])
	}
	return result
}
