package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prestasys/loan-origination/internal/domain"
	customError "github.com/prestasys/loan-origination/pkg/errors"
)

func TestLookup_NaturalPerson(t *testing.T) {
	reg := NewSimulated()

	record, err := reg.Lookup(context.Background(), domain.PersonTypeNatural, "12345678")

	require.NoError(t, err)
	assert.Equal(t, "Juan Carlos Pérez García", record.Name)
	assert.Equal(t, domain.DocumentTypeDNI, record.DocumentType)
	assert.Equal(t, "Juan Carlos Pérez García", record.DisplayName())
	assert.NotEmpty(t, record.Email)
}

func TestLookup_LegalPerson(t *testing.T) {
	reg := NewSimulated()

	record, err := reg.Lookup(context.Background(), domain.PersonTypeLegal, "20123456789")

	require.NoError(t, err)
	assert.Equal(t, "Inversiones ABC S.A.C.", record.BusinessName)
	assert.Equal(t, "Carlos Mendoza Ríos", record.LegalRep)
	assert.Equal(t, domain.DocumentTypeRUC, record.DocumentType)
	assert.Equal(t, "Inversiones ABC S.A.C.", record.DisplayName())
}

func TestLookup_NotFound(t *testing.T) {
	reg := NewSimulated()

	_, err := reg.Lookup(context.Background(), domain.PersonTypeNatural, "99999999")

	assert.ErrorIs(t, err, customError.ErrClientNotFound)
}

func TestLookup_RegistriesAreSeparate(t *testing.T) {
	reg := NewSimulated()

	// A DNI is not found in SUNAT and vice versa.
	_, err := reg.Lookup(context.Background(), domain.PersonTypeLegal, "12345678")
	assert.ErrorIs(t, err, customError.ErrClientNotFound)
}
