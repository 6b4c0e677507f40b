package dosages

import "time"

// Dosage is a dosage form such as tablet, syrup or injection.
type Dosage struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type DosageInput struct {
	Code        string
	Name        string
	Description string
}
