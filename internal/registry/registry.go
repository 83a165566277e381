// Package registry provides identity lookups against the national registries:
// RENIEC for natural persons (8-digit DNI) and SUNAT for legal persons
// (11-digit RUC). This build ships a simulated client backed by fixture
// records; the interface is what the origination workflow depends on.
package registry

import (
	"context"

	"github.com/prestasys/loan-origination/internal/domain"
	customError "github.com/prestasys/loan-origination/pkg/errors"
)

// ClientRegistry looks up a client identity record by document number.
// Document-number format validation (8 digits for natural, 11 for legal) is
// the caller's responsibility; a malformed number is a validation error, not
// a lookup failure.
type ClientRegistry interface {
	Lookup(ctx context.Context, personType, documentNumber string) (*domain.ClientRecord, error)
}

type simulatedRegistry struct {
	reniec map[string]domain.ClientRecord
	sunat  map[string]domain.ClientRecord
}

// NewSimulated returns a registry client seeded with the known test records.
func NewSimulated() ClientRegistry {
	return &simulatedRegistry{
		reniec: map[string]domain.ClientRecord{
			"12345678": {
				PersonType:     domain.PersonTypeNatural,
				Name:           "Juan Carlos Pérez García",
				DocumentType:   domain.DocumentTypeDNI,
				DocumentNumber: "12345678",
				Address:        "Av. Arequipa 123, Lima",
				Email:          "juan.perez@ejemplo.com",
			},
			"87654321": {
				PersonType:     domain.PersonTypeNatural,
				Name:           "María Rodríguez Vega",
				DocumentType:   domain.DocumentTypeDNI,
				DocumentNumber: "87654321",
				Address:        "Jr. Huallaga 456, Lima",
				Email:          "maria.rodriguez@ejemplo.com",
			},
			"45678912": {
				PersonType:     domain.PersonTypeNatural,
				Name:           "Pedro Suárez López",
				DocumentType:   domain.DocumentTypeDNI,
				DocumentNumber: "45678912",
				Address:        "Av. La Marina 789, Lima",
				Email:          "pedro.suarez@ejemplo.com",
			},
		},
		sunat: map[string]domain.ClientRecord{
			"20123456789": {
				PersonType:     domain.PersonTypeLegal,
				BusinessName:   "Inversiones ABC S.A.C.",
				LegalRep:       "Carlos Mendoza Ríos",
				DocumentType:   domain.DocumentTypeRUC,
				DocumentNumber: "20123456789",
				Address:        "Av. Javier Prado 456, San Isidro, Lima",
				Email:          "contacto@inversionesabc.com",
			},
			"20987654321": {
				PersonType:     domain.PersonTypeLegal,
				BusinessName:   "Comercial XYZ E.I.R.L.",
				LegalRep:       "Ana Gutiérrez Vargas",
				DocumentType:   domain.DocumentTypeRUC,
				DocumentNumber: "20987654321",
				Address:        "Av. República de Panamá 3030, San Isidro, Lima",
				Email:          "info@comercialxyz.com",
			},
		},
	}
}

func (r *simulatedRegistry) Lookup(ctx context.Context, personType, documentNumber string) (*domain.ClientRecord, error) {
	var records map[string]domain.ClientRecord
	if personType == domain.PersonTypeLegal {
		records = r.sunat
	} else {
		records = r.reniec
	}

	record, ok := records[documentNumber]
	if !ok {
		return nil, customError.WrapClientNotFound(documentNumber)
	}

	return &record, nil
}
