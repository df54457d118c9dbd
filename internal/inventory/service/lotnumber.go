package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/farmatrack/farmatrack-backend/internal/inventory/repository"
)

const maxLotNumberAttempts = 999

// LotNumberGenerator produces collision-free lot numbers scoped by warehouse.
// Numbers for warehouse-less (staged) lots only collide with other staged
// lots, matching the table's partial unique indexes.
type LotNumberGenerator struct {
	lots *repository.LotRepository
	now  func() time.Time
}

// NewLotNumberGenerator creates a generator backed by the lot repository
func NewLotNumberGenerator(lots *repository.LotRepository) *LotNumberGenerator {
	return &LotNumberGenerator{lots: lots, now: time.Now}
}

// GenerateTx returns a lot number unused within the given warehouse scope.
// Base form: LOT-B{id}-YYYYMMDD-HHMMSS (or LOT-N-... for staged lots). On
// collision it appends a zero-padded counter, up to 999 attempts; past that
// it falls back to a microsecond timestamp suffix and accepts it unchecked.
func (g *LotNumberGenerator) GenerateTx(ctx context.Context, tx *sqlx.Tx, idBodega *int64) (string, error) {
	now := g.now()

	scope := "N"
	if idBodega != nil {
		scope = fmt.Sprintf("B%d", *idBodega)
	}
	base := fmt.Sprintf("LOT-%s-%s", scope, now.Format("20060102-150405"))

	taken, err := g.lots.NumberExistsTx(ctx, tx, base, idBodega)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for i := 1; i <= maxLotNumberAttempts; i++ {
		candidate := fmt.Sprintf("%s-%03d", base, i)
		taken, err := g.lots.NumberExistsTx(ctx, tx, candidate, idBodega)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	// 999 consecutive collisions within one second means something is
	// hammering this warehouse; the microsecond suffix ends the contest.
	return fmt.Sprintf("%s-%d", base, now.UnixMicro()), nil
}
