package main

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GameRegistry holds every live game by id.
type GameRegistry struct {
	mu        sync.RWMutex
	games     map[string]*GameController
	config    *ConfigStore
	logger    *zap.Logger
	publisher OutcomePublisher
	options   []ControllerOption
}

func NewGameRegistry(config *ConfigStore, publisher OutcomePublisher, logger *zap.Logger, opts ...ControllerOption) *GameRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &GameRegistry{
		games:     make(map[string]*GameController),
		config:    config,
		logger:    logger,
		publisher: publisher,
		options:   opts,
	}
}

func (r *GameRegistry) Create(settings GameSettings) *GameController {
	id := uuid.NewString()
	opts := append([]ControllerOption{WithPublisher(r.publisher)}, r.options...)
	controller := NewGameController(id, settings, r.config, r.logger, opts...)
	r.mu.Lock()
	r.games[id] = controller
	r.mu.Unlock()
	r.logger.Info("game created", zap.String("game_id", id), zap.String("mode", settings.Mode()))
	return controller
}

func (r *GameRegistry) Get(id string) (*GameController, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	controller, ok := r.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return controller, nil
}

func (r *GameRegistry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[id]; !ok {
		return ErrGameNotFound
	}
	delete(r.games, id)
	r.logger.Info("game deleted", zap.String("game_id", id))
	return nil
}

// List returns the games oldest first.
func (r *GameRegistry) List() []*GameController {
	r.mu.RLock()
	controllers := make([]*GameController, 0, len(r.games))
	for _, controller := range r.games {
		controllers = append(controllers, controller)
	}
	r.mu.RUnlock()
	sort.Slice(controllers, func(i, j int) bool {
		if controllers[i].CreatedAt().Equal(controllers[j].CreatedAt()) {
			return controllers[i].ID() < controllers[j].ID()
		}
		return controllers[i].CreatedAt().Before(controllers[j].CreatedAt())
	})
	return controllers
}

// TickAll ticks every game and returns the ids whose state changed.
func (r *GameRegistry) TickAll() []string {
	changed := []string{}
	for _, controller := range r.List() {
		if controller.Tick() {
			changed = append(changed, controller.ID())
		}
	}
	return changed
}
