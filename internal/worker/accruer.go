package worker

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"investa-backend/internal/ledger"
)

const (
	accrualLockKey = "accrual_run_lock"
	accrualLockTTL = 55 * time.Second
)

// Accruer runs the interest accrual on a cron schedule. A Redis SETNX lock
// keeps overlapping triggers and multiple replicas from running the pass at
// the same time; the conditional updates in the ledger make a missed lock
// safe anyway.
type Accruer struct {
	Ledger *ledger.Service
	Redis  *redis.Client
}

func NewAccruer(svc *ledger.Service, rdb *redis.Client) *Accruer {
	return &Accruer{
		Ledger: svc,
		Redis:  rdb,
	}
}

func (a *Accruer) Register(c *cron.Cron, schedule string) error {
	_, err := c.AddFunc(schedule, a.Run)
	return err
}

func (a *Accruer) Run() {
	ctx := context.Background()

	locked, err := a.Redis.SetNX(ctx, accrualLockKey, "1", accrualLockTTL).Result()
	if err != nil {
		log.Printf("Accrual lock unavailable, running without it: %v", err)
	} else if !locked {
		log.Println("Accrual run already in progress, skipping")
		return
	} else {
		defer a.Redis.Del(ctx, accrualLockKey)
	}

	count, err := a.Ledger.AccrueAll()
	if err != nil {
		log.Printf("Accrual run failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Accrued profit on %d deposits", count)
	}
}
