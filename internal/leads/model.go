package leads

import "strings"

const (
	// CollectionName is the document collection leads are stored in
	CollectionName = "lead"

	// DefaultSource is recorded when a submission does not name its source
	DefaultSource = "website"
)

// Lead represents a contact-form submission. Optional fields are pointers so
// an absent value is stored as null rather than an empty string.
type Lead struct {
	Name            string  `json:"name" bson:"name" validate:"required" jsonschema:"required,title=Name"`
	Email           string  `json:"email" bson:"email" validate:"required,email" jsonschema:"required,title=Email,format=email"`
	Phone           *string `json:"phone" bson:"phone" jsonschema:"title=Phone,nullable"`
	Company         *string `json:"company" bson:"company" jsonschema:"title=Company,nullable"`
	Website         *string `json:"website" bson:"website" jsonschema:"title=Website,nullable"`
	ServiceInterest *string `json:"service_interest" bson:"service_interest" jsonschema:"title=Service Interest,nullable"`
	Budget          *string `json:"budget" bson:"budget" jsonschema:"title=Budget,nullable"`
	Message         *string `json:"message" bson:"message" jsonschema:"title=Message,nullable"`
	Source          *string `json:"source" bson:"source" jsonschema:"title=Source,nullable,default=website"`
}

// Normalize trims the required fields and applies the default source.
func (l *Lead) Normalize() {
	l.Name = strings.TrimSpace(l.Name)
	l.Email = strings.TrimSpace(l.Email)
	if l.Source == nil {
		source := DefaultSource
		l.Source = &source
	}
}

// CreateLeadResponse is returned after a lead is stored
type CreateLeadResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}
