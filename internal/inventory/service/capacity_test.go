package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farmatrack/farmatrack-backend/internal/inventory/repository"
)

func TestValidateCapacity(t *testing.T) {
	tests := []struct {
		name      string
		capacidad int
		ocupacion int
		requerido int
		rejected  bool
		exceso    int
	}{
		{"fits exactly", 100, 80, 20, false, 0},
		{"fits with room", 100, 80, 15, false, 0},
		{"one unit over", 100, 80, 21, true, 1},
		{"empty warehouse", 100, 0, 100, false, 0},
		{"full warehouse", 100, 100, 1, true, 1},
		{"zero request into full warehouse", 100, 100, 0, false, 0},
		{"scenario second reception", 100, 95, 15, true, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rej := ValidateCapacity(tt.capacidad, tt.ocupacion, tt.requerido)
			if !tt.rejected {
				assert.Nil(t, rej)
				return
			}
			if assert.NotNil(t, rej) {
				assert.Equal(t, tt.capacidad-tt.ocupacion, rej.Disponible)
				assert.Equal(t, tt.requerido, rej.Requerido)
				assert.Equal(t, tt.exceso, rej.Exceso)
			}
		})
	}
}

func TestNewCapacityStatus(t *testing.T) {
	bodega := &repository.Bodega{IDBodega: 7, Nombre: "Central", Capacidad: 200}

	status := newCapacityStatus(bodega, 50)
	assert.Equal(t, int64(7), status.IDBodega)
	assert.Equal(t, 200, status.Capacidad)
	assert.Equal(t, 50, status.Ocupacion)
	assert.Equal(t, 150, status.Disponible)
	assert.InDelta(t, 25.0, status.PorcentajeOcupacion, 0.001)
}

func TestNewCapacityStatusZeroCapacity(t *testing.T) {
	bodega := &repository.Bodega{IDBodega: 8, Nombre: "Vacía", Capacidad: 0}

	status := newCapacityStatus(bodega, 0)
	assert.Equal(t, 0, status.Disponible)
	assert.Equal(t, 0.0, status.PorcentajeOcupacion)
}
