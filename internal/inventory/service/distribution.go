package service

import (
	"context"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/farmatrack/farmatrack-backend/internal/inventory/repository"
)

// AlternativeWarehouse is a sibling warehouse candidate for absorbing excess
// stock, with its availability computed under its own row lock.
type AlternativeWarehouse struct {
	IDBodega            int64   `json:"id_bodega"`
	Nombre              string  `json:"nombre"`
	Capacidad           int     `json:"capacidad"`
	Disponible          int     `json:"disponible"`
	PorcentajeOcupacion float64 `json:"porcentaje_ocupacion"`
}

// Allocation assigns a quantity to a warehouse in a distribution proposal.
type Allocation struct {
	IDBodega   int64  `json:"id_bodega"`
	Nombre     string `json:"nombre"`
	Disponible int    `json:"disponible"`
	Cantidad   int    `json:"cantidad"`
}

// findAlternativesTx collects every other operational warehouse of the branch
// with its fresh availability. Siblings are visited (and locked) in ascending
// id order; the result is sorted by available capacity descending, id
// ascending on ties, ready for the greedy suggester.
func (s *ReceptionService) findAlternativesTx(ctx context.Context, tx *sqlx.Tx, primary *repository.Bodega) ([]*AlternativeWarehouse, error) {
	siblings, err := s.warehouses.ListSiblingsTx(ctx, tx, primary.IDSucursal, primary.IDBodega)
	if err != nil {
		return nil, err
	}

	alternatives := make([]*AlternativeWarehouse, 0, len(siblings))
	for _, sibling := range siblings {
		locked, err := s.warehouses.GetForUpdateTx(ctx, tx, sibling.IDBodega)
		if err != nil {
			return nil, err
		}
		ocupacion, err := s.warehouses.OccupancyTx(ctx, tx, locked.IDBodega)
		if err != nil {
			return nil, err
		}
		status := newCapacityStatus(locked, ocupacion)
		alternatives = append(alternatives, &AlternativeWarehouse{
			IDBodega:            locked.IDBodega,
			Nombre:              locked.Nombre,
			Capacidad:           locked.Capacidad,
			Disponible:          status.Disponible,
			PorcentajeOcupacion: status.PorcentajeOcupacion,
		})
	}

	sort.SliceStable(alternatives, func(i, j int) bool {
		if alternatives[i].Disponible != alternatives[j].Disponible {
			return alternatives[i].Disponible > alternatives[j].Disponible
		}
		return alternatives[i].IDBodega < alternatives[j].IDBodega
	})

	return alternatives, nil
}

// SuggestDistribution greedily fills candidates in the given order with
// min(available, remaining), stopping once nothing is left. Filling the
// roomiest warehouses first keeps the number of warehouses touched small.
// A non-zero remainder means the candidates cannot absorb the excess.
func SuggestDistribution(candidates []*AlternativeWarehouse, excess int) ([]Allocation, int) {
	allocations := []Allocation{}
	remaining := excess

	for _, c := range candidates {
		if remaining <= 0 {
			break
		}
		if c.Disponible <= 0 {
			continue
		}
		take := c.Disponible
		if remaining < take {
			take = remaining
		}
		allocations = append(allocations, Allocation{
			IDBodega:   c.IDBodega,
			Nombre:     c.Nombre,
			Disponible: c.Disponible,
			Cantidad:   take,
		})
		remaining -= take
	}

	return allocations, remaining
}
