package switchgame

import (
	"log/slog"
	"time"

	"github.com/daretide/daretide-backend/internal/status"
	"gorm.io/gorm"
)

// StartExpirySweeper forfeits games that sat unjoined past their TTL.
// Joined games are driven by their obligation dares instead.
func StartExpirySweeper(db *gorm.DB, interval time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				expired, err := sweepUnjoined(db)
				if err != nil {
					slog.Error("game expiry sweep failed", "error", err)
				} else if expired > 0 {
					slog.Info("game expiry sweep completed", "expired", expired)
				}
			case <-done:
				return
			}
		}
	}()
}

func sweepUnjoined(db *gorm.DB) (int64, error) {
	res := db.Model(&SwitchGame{}).
		Where("status = ? AND participant_id IS NULL AND expires_at IS NOT NULL AND expires_at < ?",
			status.GameWaitingForParticipant, time.Now()).
		Update("status", status.GameForfeited)
	return res.RowsAffected, res.Error
}
