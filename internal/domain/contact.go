package domain

import "time"

// Contact pertenece siempre a un unico usuario (OwnerID).
type Contact struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Birthday       *Date     `json:"birthday"`
	AdditionalInfo *string   `json:"additional_info"`
	CreatedAt      time.Time `json:"-"`
}

// ContactPatch lleva solo los campos enviados por el cliente. Un campo sin
// Set no cambia; Set con Value nil lo deja en NULL.
type ContactPatch struct {
	FirstName      Optional[string] `json:"first_name"`
	LastName       Optional[string] `json:"last_name"`
	Email          Optional[string] `json:"email"`
	Phone          Optional[string] `json:"phone"`
	Birthday       Optional[Date]   `json:"birthday"`
	AdditionalInfo Optional[string] `json:"additional_info"`
}

// IsEmpty reporta si el patch no modifica ningun campo.
func (p ContactPatch) IsEmpty() bool {
	return !p.FirstName.Set && !p.LastName.Set && !p.Email.Set &&
		!p.Phone.Set && !p.Birthday.Set && !p.AdditionalInfo.Set
}

// Apply copia sobre c los campos presentes en el patch.
func (p ContactPatch) Apply(c *Contact) {
	if p.FirstName.Value != nil {
		c.FirstName = *p.FirstName.Value
	}
	if p.LastName.Value != nil {
		c.LastName = *p.LastName.Value
	}
	if p.Email.Value != nil {
		c.Email = *p.Email.Value
	}
	if p.Phone.Value != nil {
		c.Phone = *p.Phone.Value
	}
	if p.Birthday.Set {
		c.Birthday = p.Birthday.Value
	}
	if p.AdditionalInfo.Set {
		c.AdditionalInfo = p.AdditionalInfo.Value
	}
}
