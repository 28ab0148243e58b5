package services

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// TrackTime logs how long a call took. Use as defer TrackTime("name", time.Now()).
func TrackTime(funcName string, start time.Time) {
	elapsed := time.Since(start)
	log.WithFields(log.Fields{
		"func":       funcName,
		"elapsed_ms": elapsed.Milliseconds(),
	}).Debug("timing")
}
