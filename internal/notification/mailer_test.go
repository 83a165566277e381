package notification

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/prestasys/loan-origination/internal/amortization"
)

func TestScheduleAttachment(t *testing.T) {
	schedule := []amortization.Entry{
		{
			Sequence: 1,
			DueDate:  time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
			Payment:  decimal.RequireFromString("135"),
		},
		{
			Sequence: 2,
			DueDate:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			Payment:  decimal.RequireFromString("135"),
		},
	}

	content := scheduleAttachment(schedule)

	assert.Contains(t, content, "Cuota 1 - Fecha: 15/02/2024 - Monto: S/ 135.00")
	assert.Contains(t, content, "Cuota 2 - Fecha: 15/03/2024 - Monto: S/ 135.00")
}

func TestScheduleAttachment_Empty(t *testing.T) {
	assert.Empty(t, scheduleAttachment(nil))
}
