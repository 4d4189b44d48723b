package services

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ModelStore owns every trained model, keyed by (frequency, filter) tuple.
// Models are fitted on the base scenario only and are immutable once
// stored; retraining happens only through an explicit Flush.
//
// A per-key mutex serializes the first training for a key while identical
// concurrent requests wait for that model instead of fitting their own.
type ModelStore struct {
	mu     sync.Mutex
	models map[string]*ForecastModel
	locks  map[string]*sync.Mutex

	trainCount atomic.Int64
	logger     *logrus.Logger
}

func NewModelStore(logger *logrus.Logger) *ModelStore {
	return &ModelStore{
		models: make(map[string]*ForecastModel),
		locks:  make(map[string]*sync.Mutex),
		logger: logger,
	}
}

// GetOrTrain returns the model for key, training it via build on first
// use. The returned bool reports whether the model already existed before
// this call ("precomputed" vs "on_demand" in the payload).
func (s *ModelStore) GetOrTrain(key string, build func() (*ForecastModel, error)) (*ForecastModel, bool, error) {
	if model, ok := s.lookup(key); ok {
		return model, true, nil
	}

	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	// Double-check: another caller may have trained while we waited.
	if model, ok := s.lookup(key); ok {
		return model, true, nil
	}

	model, err := build()
	if err != nil {
		return nil, false, err
	}
	s.trainCount.Add(1)
	s.logger.WithField("model_key", key).Info("Trained forecast model")

	s.mu.Lock()
	s.models[key] = model
	s.mu.Unlock()

	return model, false, nil
}

// TrainCount reports how many trainings have run; instrumentation for the
// single-flight guarantee.
func (s *ModelStore) TrainCount() int64 {
	return s.trainCount.Load()
}

// Flush drops every trained model. Manual retrain entry point for when
// the underlying ledger changes.
func (s *ModelStore) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = make(map[string]*ForecastModel)
}

func (s *ModelStore) lookup(key string) (*ForecastModel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	model, ok := s.models[key]
	return model, ok
}

func (s *ModelStore) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}
