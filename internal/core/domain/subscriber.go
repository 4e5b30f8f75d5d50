package domain

type Subscriber struct {
	Code      int64   `json:"code"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	TagID     *string `json:"tag_id,omitempty"`
}

func (s *Subscriber) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}

	return s.FirstName + " " + s.LastName
}
