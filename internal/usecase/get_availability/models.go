package get_availability

// Request модель запроса карты доступности за месяц
type Request struct {
	ProviderID string
	Year       int
	Month      int
}

// DayStatus статус одной даты месяца
type DayStatus struct {
	Available      bool `json:"available"`
	Blocked        bool `json:"blocked"`
	BookedSlots    int  `json:"bookedSlots"`
	Capacity       int  `json:"capacity"`
	RemainingSlots int  `json:"remainingSlots"`
}

// Response карта доступности: ключ - дата в формате YYYY-MM-DD
type Response struct {
	ProviderID  string               `json:"providerId"`
	ServiceType string               `json:"serviceType"`
	Year        int                  `json:"year"`
	Month       int                  `json:"month"`
	Days        map[string]DayStatus `json:"days"`
}
