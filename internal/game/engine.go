package game

import "math/rand/v2"

// Options tune dealing defaults. Zero values fall back to the standard
// 25-card board with one assassin.
type Options struct {
	BoardSize       int
	AssassinCount   int
	DefaultDeck     string
	DefaultLanguage string
}

const (
	defaultBoardSize = 25
	defaultAssassins = 1
	defaultDeck      = "BASE"
	defaultLanguage  = "en"
)

func (o Options) withDefaults() Options {
	if o.BoardSize <= 0 {
		o.BoardSize = defaultBoardSize
	}
	if o.AssassinCount <= 0 {
		o.AssassinCount = defaultAssassins
	}
	if o.DefaultDeck == "" {
		o.DefaultDeck = defaultDeck
	}
	if o.DefaultLanguage == "" {
		o.DefaultLanguage = defaultLanguage
	}
	return o
}

// Engine holds the gameplay rules. It keeps no cross-request state; the
// store is the only shared resource.
type Engine struct {
	store Store
	opts  Options
}

func New(store Store, opts Options) *Engine {
	return &Engine{store: store, opts: opts.withDefaults()}
}

// newRNG returns a request-scoped source. Randomized steps (dealing, role
// picks) each take their own so the engine stays free of shared state.
func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
