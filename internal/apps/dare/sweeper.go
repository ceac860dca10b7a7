package dare

import (
	"log/slog"
	"time"

	"github.com/daretide/daretide-backend/internal/status"
	"gorm.io/gorm"
)

// StartExpirySweeper runs a background goroutine that expires
// TTL-elapsed open dares and purges proof content past its retention
// window. Closing done stops the loop; the ticker never fires after
// teardown.
func StartExpirySweeper(db *gorm.DB, interval time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				expired, err := sweepExpired(db)
				if err != nil {
					slog.Error("expiry sweep failed", "error", err)
				} else if expired > 0 {
					slog.Info("expiry sweep completed", "expired", expired)
				}

				purged, err := purgeExpiredProofs(db)
				if err != nil {
					slog.Error("proof purge failed", "error", err)
				} else if purged > 0 {
					slog.Info("proof purge completed", "purged", purged)
				}
			case <-done:
				return
			}
		}
	}()
}

func sweepExpired(db *gorm.DB) (int64, error) {
	res := db.Model(&Dare{}).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at < ?",
			status.OpenStatuses(), time.Now()).
		Update("status", status.Expired)
	return res.RowsAffected, res.Error
}

func purgeExpiredProofs(db *gorm.DB) (int64, error) {
	var dares []Dare
	err := db.Where("proof_expires_at IS NOT NULL AND proof_expires_at < ? AND (proof_text <> '' OR proof_file_url <> '')",
		time.Now()).Find(&dares).Error
	if err != nil {
		return 0, err
	}

	var purged int64
	for i := range dares {
		d := &dares[i]
		err := db.Model(&Dare{}).Where("id = ?", d.ID).
			Updates(map[string]interface{}{"proof_text": "", "proof_file_url": ""}).Error
		if err != nil {
			return purged, err
		}
		removeProofFile(d.ProofFileURL)
		purged++
	}
	return purged, nil
}
