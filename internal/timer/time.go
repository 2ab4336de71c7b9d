package timer

import (
	"time"

	"github.com/rs/zerolog/log"
)

// TimeTrack logs how long the named step took. Call it deferred with time.Now().
func TimeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	log.Info().Dur("elapsed", elapsed).Msgf("%s took %s", name, elapsed.Round(time.Millisecond))
}
