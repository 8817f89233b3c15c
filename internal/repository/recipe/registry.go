package recipe

import (
	"errors"
	"fmt"

	domain "github.com/appcanary/packager/internal/domain/recipe"
)

// ErrNotFound is returned when a recipe key is not registered.
var ErrNotFound = errors.New("recipe not found")

// Repository exposes read-only recipe lookups.
type Repository interface {
	All() []domain.Recipe
	Get(key string) (*domain.Recipe, error)
	Select(keys []string) ([]domain.Recipe, error)
	Len() int
}

var _ Repository = (*Registry)(nil)

// Registry is an immutable, ordered set of recipes keyed by Recipe.Key.
type Registry struct {
	// recipes keeps declaration order.
	recipes []domain.Recipe
	// index maps recipe keys to positions in recipes.
	index map[string]int
}

// NewRegistry validates recipes and indexes them by key. Any invalid or
// duplicate recipe is a configuration error wrapping domain.ErrInvalid.
func NewRegistry(recipes ...domain.Recipe) (*Registry, error) {
	reg := &Registry{
		recipes: make([]domain.Recipe, 0, len(recipes)),
		index:   make(map[string]int, len(recipes)),
	}

	for i := range recipes {
		r := cloneRecipe(&recipes[i])

		if err := r.Validate(); err != nil {
			return nil, err
		}

		key := r.Key()
		if _, dup := reg.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate recipe %q", domain.ErrInvalid, key)
		}

		reg.index[key] = len(reg.recipes)
		reg.recipes = append(reg.recipes, r)
	}

	return reg, nil
}

// All returns copies of every recipe in declaration order.
func (r *Registry) All() []domain.Recipe {
	out := make([]domain.Recipe, 0, len(r.recipes))
	for i := range r.recipes {
		out = append(out, cloneRecipe(&r.recipes[i]))
	}

	return out
}

// Get returns a copy of the recipe registered under key.
func (r *Registry) Get(key string) (*domain.Recipe, error) {
	i, ok := r.index[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	found := cloneRecipe(&r.recipes[i])

	return &found, nil
}

// Select returns the named recipes in the order given, or every recipe when
// keys is empty.
func (r *Registry) Select(keys []string) ([]domain.Recipe, error) {
	if len(keys) == 0 {
		return r.All(), nil
	}

	out := make([]domain.Recipe, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))

	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		found, err := r.Get(key)
		if err != nil {
			return nil, err
		}

		out = append(out, *found)
	}

	return out, nil
}

// Len returns the number of registered recipes.
func (r *Registry) Len() int {
	return len(r.recipes)
}

func cloneRecipe(r *domain.Recipe) domain.Recipe {
	c := *r
	c.Releases = append([]domain.Release(nil), r.Releases...)
	c.ConfigFiles = append([]domain.ConfigFile(nil), r.ConfigFiles...)
	c.Hooks = append([]domain.Hook(nil), r.Hooks...)

	return c
}
