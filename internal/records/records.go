package records

import (
	"cmp"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/campus/internal/resource"
	"github.com/mesh-intelligence/campus/pkg/types"
)

// Handler is a resource handler ready to be mounted at Prefix.
type Handler interface {
	http.Handler
	Prefix() string
}

// Set is every record resource of one repository.
type Set struct {
	operations map[string]resource.Operations
	handlers   []Handler
}

// New wires the record resources over repo. Stores are wrapped with debug
// logging and, when reg is not nil, RED metrics.
func New(repo types.Repository, log *zap.Logger, reg prometheus.Registerer) *Set {
	s := &Set{operations: map[string]resource.Operations{}}
	add(s, Articles, repo.Articles(), log, reg)
	add(s, RecommendationRequests, repo.RecommendationRequests(), log, reg)
	add(s, MenuItems, repo.MenuItems(), log, reg)
	add(s, Organizations, repo.Organizations(), log, reg)
	return s
}

func add[K cmp.Ordered, R types.Record[K]](s *Set, def resource.Definition[K, R], store types.Store[K, R], log *zap.Logger, reg prometheus.Registerer) {
	if reg != nil {
		store = resource.NewStoreMetrics(reg, def.Schema.Table, store)
	}
	store = resource.NewStoreLogger(log.With(zap.String("store", def.Schema.Table)), store)

	svc := resource.NewService(def, store)
	s.operations[def.Path] = svc.Operations()
	s.handlers = append(s.handlers, resource.NewHandler(log, svc))
}

// Handlers returns the HTTP handlers of every resource.
func (s *Set) Handlers() []Handler {
	return s.handlers
}

// Lookup returns the resource whose path is name.
func (s *Set) Lookup(name string) (resource.Operations, bool) {
	ops, ok := s.operations[name]
	return ops, ok
}

// Names lists the resource paths in order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.operations))
	for name := range s.operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
