package config

import "time"

type Worker struct {
	SweepInterval time.Duration `env:"WORKER_SWEEP_INTERVAL" envDefault:"15m"`
}
