package domain

type Lot struct {
	Name     string
	Capacity int
}

type LotStats struct {
	Lot                  string `json:"lot"`
	Total                int    `json:"total"`
	Occupied             int    `json:"occupied"`
	UpcomingWithinNext4h int    `json:"upcoming_within_next_4h"`
	Available            int    `json:"available"`
}
