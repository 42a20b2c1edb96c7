package entry

// Badge is one credential already issued to a person.
type Badge struct {
	EventID     string `json:"event_id"`
	Affiliation string `json:"affiliation"`
	Role        string `json:"role"`
}

// Person is an existing badge record fetched from the backend to prefill the form.
type Person struct {
	PersonID  string  `json:"-"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Badges    []Badge `json:"badges"`
}

// BadgeFor returns the first badge issued for eventID.
func (p Person) BadgeFor(eventID string) (Badge, bool) {
	for _, b := range p.Badges {
		if b.EventID == eventID {
			return b, true
		}
	}
	return Badge{}, false
}

// Prefill copies the record into the draft. Role and affiliation come from the badge for
// EventID only; without one the role is Staff and the affiliation empty. An unknown role
// string also falls back to Staff.
// POST: PreviousRole == Role, so the prefilled affiliation survives the first render
func (d *Draft) Prefill(p Person) {
	d.FirstName = p.FirstName
	d.LastName = p.LastName
	d.PersonID = p.PersonID
	d.Role = RoleStaff
	d.Affiliation = ""
	if b, ok := p.BadgeFor(EventID); ok {
		d.Affiliation = b.Affiliation
		if r, ok := ParseRole(b.Role); ok {
			d.Role = r
		}
	}
	d.PreviousRole = d.Role
}
