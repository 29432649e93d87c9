package predict

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/aceteam-ai/modulus-cli/internal/config"
	"github.com/aceteam-ai/modulus-cli/internal/model"
	"github.com/aceteam-ai/modulus-cli/internal/soil"
)

// Registry holds one service per variant. Handles are created unloaded; each
// reads its artifact on first use.
type Registry struct {
	services map[string]*Service
	handles  map[string]*model.Handle
}

// NewRegistry wires every variant from cfg.
func NewRegistry(cfg *config.Config, log logrus.FieldLogger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Registry{
		services: make(map[string]*Service),
		handles:  make(map[string]*model.Handle),
	}
	for _, v := range soil.All() {
		var h *model.Handle
		if v.Name == soil.VariantDemo {
			v = v.WithGateMode(cfg.DemoGate())
			h = model.NewStaticHandle(v.Name, model.DemoEstimator{})
		} else {
			h = model.NewHandle(v.Name, cfg.ModelPath(v.Name), model.WithLogger(log))
		}
		r.Add(v, h, log)
	}
	return r
}

// Add registers (or replaces) the service for v.
func (r *Registry) Add(v soil.Variant, h *model.Handle, log logrus.FieldLogger) {
	r.handles[v.Name] = h
	r.services[v.Name] = NewService(v, h, log)
}

// Service returns the service for a variant name.
func (r *Registry) Service(name string) (*Service, error) {
	v, err := soil.Lookup(name)
	if err != nil {
		return nil, err
	}
	s, ok := r.services[v.Name]
	if !ok {
		return nil, soil.ErrUnknownVariant
	}
	return s, nil
}

// Handle returns the model handle for a variant name.
func (r *Registry) Handle(name string) (*model.Handle, bool) {
	h, ok := r.handles[name]
	return h, ok
}

// States returns the load state of every handle.
func (r *Registry) States() map[string]string {
	out := make(map[string]string, len(r.handles))
	for name, h := range r.handles {
		out[name] = h.State().String()
	}
	return out
}

// Names returns the registered variant names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preload loads every artifact now instead of on first prediction. Failures
// are returned per variant; the handles stay unavailable.
func (r *Registry) Preload() map[string]error {
	errs := make(map[string]error)
	for name, h := range r.handles {
		if err := h.Load(); err != nil {
			errs[name] = err
		}
	}
	return errs
}
