package translate

import (
	"context"
	stderrors "errors"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pierrevial/candy-for-charon/errors"
	"github.com/pierrevial/candy-for-charon/ir"
	"github.com/pierrevial/candy-for-charon/llbc"
	"github.com/pierrevial/candy-for-charon/reconstruct"
	"github.com/pierrevial/candy-for-charon/simplify"
	"github.com/pierrevial/candy-for-charon/ullbc"
)

// Crate is the translated form of a frontend crate. Source keeps the
// declaration tables (names, types, ordering); Funs and Globals hold the
// structured bodies of the declarations that translated. Declarations
// that failed are listed in Diagnostics and absent from the maps; opaque
// declarations are absent from both.
type Crate struct {
	Source      *ullbc.Crate
	Funs        map[ir.FunID]*llbc.Body
	Globals     map[ir.GlobalID]*llbc.Body
	Diagnostics []*errors.Error
}

// Translator runs the pipeline. Configure it with Options; the zero
// configuration translates sequentially per GOMAXPROCS, simplifies, and
// logs nothing.
type Translator struct {
	log      *zap.Logger
	workers  int
	simplify bool
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger injects a logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.log = l
		}
	}
}

// WithWorkers caps how many bodies translate concurrently.
func WithWorkers(n int) Option {
	return func(t *Translator) {
		if n > 0 {
			t.workers = n
		}
	}
}

// WithoutSimplify stops after control-flow reconstruction, leaving guard
// idioms and discriminant reads in place.
func WithoutSimplify() Option {
	return func(t *Translator) { t.simplify = false }
}

// New builds a Translator.
func New(opts ...Option) *Translator {
	t := &Translator{
		log:      zap.NewNop(),
		workers:  runtime.GOMAXPROCS(0),
		simplify: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Crate translates every transparent declaration of c. Bodies are
// independent and translate concurrently; a per-body failure becomes a
// diagnostic, not an error. The returned error is non-nil only when ctx
// is cancelled.
func (t *Translator) Crate(ctx context.Context, c *ullbc.Crate) (*Crate, error) {
	out := &Crate{
		Source:  c,
		Funs:    make(map[ir.FunID]*llbc.Body),
		Globals: make(map[ir.GlobalID]*llbc.Body),
	}
	variants := Variants(c)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	var mu sync.Mutex

	for i := range c.Funs {
		decl := &c.Funs[i]
		if decl.Body == nil {
			t.log.Debug("skipping opaque function", zap.String("fun", decl.Name))
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			body, err := t.Body(decl.Name, decl.Body, variants)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Diagnostics = append(out.Diagnostics, t.diagnostic(decl.Name, err))
				return nil
			}
			out.Funs[decl.ID] = body
			t.log.Debug("translated function", zap.String("fun", decl.Name))
			return nil
		})
	}
	for i := range c.Globals {
		decl := &c.Globals[i]
		if decl.Body == nil {
			t.log.Debug("skipping opaque global", zap.String("global", decl.Name))
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			body, err := t.Body(decl.Name, decl.Body, variants)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Diagnostics = append(out.Diagnostics, t.diagnostic(decl.Name, err))
				return nil
			}
			out.Globals[decl.ID] = body
			t.log.Debug("translated global", zap.String("global", decl.Name))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(out.Diagnostics, func(i, j int) bool {
		return out.Diagnostics[i].Decl < out.Diagnostics[j].Decl
	})
	return out, nil
}

// Body translates one body: reconstruction, then simplification unless
// disabled.
func (t *Translator) Body(decl string, b *ullbc.Body, variants simplify.VariantResolver) (*llbc.Body, error) {
	structured, err := reconstruct.Body(decl, b)
	if err != nil {
		return nil, err
	}
	if !t.simplify {
		return structured, nil
	}
	return simplify.Body(decl, structured, variants)
}

func (t *Translator) diagnostic(decl string, err error) *errors.Error {
	t.log.Warn("translation failed", zap.String("decl", decl), zap.Error(err))
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e
	}
	return errors.New(errors.PhaseTranslate, errors.KindInternal).
		Decl(decl).
		Cause(err).
		Build()
}

// Variants exposes the crate's enum declarations to the simplifier.
func Variants(c *ullbc.Crate) simplify.VariantResolver {
	return crateVariants{c}
}

type crateVariants struct {
	crate *ullbc.Crate
}

func (v crateVariants) VariantCount(id ir.TypeID) (int, bool) {
	d := v.crate.Type(id)
	if d == nil || !d.IsEnum() {
		return 0, false
	}
	return len(d.Variants), true
}
