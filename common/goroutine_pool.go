package common

import (
	"github.com/panjf2000/ants/v2"
	"github.com/shirou/gopsutil/v3/cpu"
	log "github.com/sirupsen/logrus"
)

type PoolConfig struct {
	// MaxWorkers <= 0 sizes the pool to the logical CPU count
	MaxWorkers int
}

func NewPool(config PoolConfig) (*ants.Pool, error) {
	workers := config.MaxWorkers
	if workers <= 0 {
		workers = logicalCPUs()
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		log.Errorf("Failed to create ants goroutine_pool: %v", err)
		return nil, err
	}

	log.Infof("goroutine_pool created, workers: %d", workers)
	return pool, nil
}

func logicalCPUs() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		log.Warningf("cpu count unavailable (err:%v), using 1 worker", err)
		return 1
	}
	return n
}
