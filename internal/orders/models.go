package orders

import "time"

type Submission struct {
	ID          string           `json:"id"`
	ExternalID  string           `json:"external_id"`
	SessionID   string           `json:"session_id"`
	AuthorName  string           `json:"author_name"`
	Email       string           `json:"email"`
	Title       string           `json:"title"`
	PostalCode  string           `json:"postal_code"`
	Address     string           `json:"address"`
	PhoneNumber string           `json:"phone_number"`
	Notes       string           `json:"notes,omitempty"`
	Status      Status           `json:"status"`
	TotalItems  int              `json:"total_items"`
	Items       []SubmissionItem `json:"items,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type SubmissionItem struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submission_id"`
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	VariantID    string `json:"variant_id,omitempty"`
	Color        string `json:"color,omitempty"`
	Size         string `json:"size,omitempty"`
	SKU          string `json:"sku,omitempty"`
	Qty          int    `json:"qty"`
}

// SubmissionFromPayload builds the row set recorded for an OrderSubmitted event.
func SubmissionFromPayload(p OrderSubmittedPayload) Submission {
	s := Submission{
		ID:          p.OrderID,
		ExternalID:  p.ExternalID,
		SessionID:   p.SessionID,
		AuthorName:  p.AuthorName,
		Email:       p.Email,
		Title:       p.Title,
		PostalCode:  p.PostalCode,
		Address:     p.Address,
		PhoneNumber: p.PhoneNumber,
		Notes:       p.Notes,
		Status:      StatusFor(p.Delivered),
		TotalItems:  p.TotalItems,
	}
	for _, it := range p.Items {
		s.Items = append(s.Items, SubmissionItem{
			SubmissionID: p.OrderID,
			ProductID:    it.ProductID,
			Name:         it.Name,
			VariantID:    it.VariantID,
			Color:        it.Color,
			Size:         it.Size,
			SKU:          it.SKU,
			Qty:          it.Qty,
		})
	}
	return s
}
