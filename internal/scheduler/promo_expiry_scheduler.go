package scheduler

import (
	"time"

	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// PromoExpirer switches off promo codes whose validity window has ended
type PromoExpirer interface {
	DeactivateExpired(now time.Time) (int64, error)
}

// PromoExpiryScheduler periodically deactivates expired promo codes. Carts
// holding such a code keep it attached and simply get no discount; the sweep
// only keeps the admin listing accurate.
type PromoExpiryScheduler struct {
	cron     *cron.Cron
	schedule string
	expirer  PromoExpirer
	clock    func() time.Time
}

func NewPromoExpiryScheduler(schedule string, expirer PromoExpirer) *PromoExpiryScheduler {
	return &PromoExpiryScheduler{
		cron:     cron.New(),
		schedule: schedule,
		expirer:  expirer,
		clock:    time.Now,
	}
}

func (s *PromoExpiryScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Sweep); err != nil {
		logger.Error("Failed to add promo expiry job", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Promo expiry scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// Sweep runs one deactivation pass
func (s *PromoExpiryScheduler) Sweep() {
	count, err := s.expirer.DeactivateExpired(s.clock())
	if err != nil {
		logger.Error("Promo expiry sweep failed", err)
		return
	}
	logger.Debug("Promo expiry sweep finished", map[string]interface{}{
		"deactivated": count,
	})
}

// Stop waits for a running sweep to finish
func (s *PromoExpiryScheduler) Stop() {
	logger.Info("Stopping promo expiry scheduler")
	<-s.cron.Stop().Done()
}
