package domain

// Person types accepted by the identity registries.
const (
	PersonTypeNatural = "natural"
	PersonTypeLegal   = "legal"
)

// Document types issued by the registries.
const (
	DocumentTypeDNI = "DNI"
	DocumentTypeRUC = "RUC"
)

// Document number lengths enforced by the caller before a registry lookup.
const (
	DNILength = 8
	RUCLength = 11
)

// ClientRecord is an identity record returned by a registry lookup. Natural
// persons carry Name; legal persons carry BusinessName and LegalRep.
type ClientRecord struct {
	PersonType     string `json:"person_type"`
	Name           string `json:"name,omitempty"`
	BusinessName   string `json:"business_name,omitempty"`
	LegalRep       string `json:"legal_rep,omitempty"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	Address        string `json:"address,omitempty"`
	Email          string `json:"email,omitempty"`
}

// DisplayName returns the name to address the client by.
func (c *ClientRecord) DisplayName() string {
	if c.PersonType == PersonTypeLegal {
		return c.BusinessName
	}
	return c.Name
}
