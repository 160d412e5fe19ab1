package logging

import (
	"sync"

	"go.uber.org/zap"
)

var once sync.Once

// Init installs the process-wide zap logger. Call once from main; services
// log through zap.L() afterwards.
func Init(debug bool) {
	once.Do(func() {
		var (
			logger *zap.Logger
			err    error
		)
		if debug {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			panic(err)
		}
		zap.ReplaceGlobals(logger)
	})
}
