package action

import (
	"context"
	"log/slog"

	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/notify"
	"github.com/simp-lee/shopadmin/internal/store"
)

// Dispatcher binds a resource's API binding and store slice to a Runner.
// Each method walks the pending, then fulfilled or rejected transition of
// the slice.
type Dispatcher[T any] struct {
	Runner  *Runner
	Binding *api.Binding[T]
	Slice   *store.Slice[T]
	// IDOf returns a record's backend id. Nil when the slice key is the id.
	IDOf func(T) string
	// Base carries Resource, Name and Operator; Verb and Key are set per call.
	Base     Spec
	Notifier notify.Notifier
}

func (d Dispatcher[T]) spec(verb, key string) Spec {
	s := d.Base
	s.Verb = verb
	s.Key = key
	return s
}

// FetchList loads one page into the slice. When a newer fetch was issued in
// the meantime the result is discarded and stale is true.
func (d Dispatcher[T]) FetchList(ctx context.Context, req domain.PageRequest) (page *domain.Page[T], stale bool, err error) {
	t := d.Slice.Begin(store.KindList)
	page, err = Run(ctx, d.Runner, d.Notifier, d.spec(VerbFetch, ""), func(ctx context.Context) (*domain.Page[T], error) {
		return d.Binding.List(ctx, req)
	})
	if err != nil {
		if !d.Slice.Reject(t, Message(err, d.spec(VerbFetch, ""))) {
			d.staleResult(ctx)
			return nil, true, err
		}
		return nil, false, err
	}
	if !d.Slice.FulfillList(t, *page) {
		d.staleResult(ctx)
		return page, true, nil
	}
	return page, false, nil
}

// Get fetches one record. The slice only tracks loading and error.
func (d Dispatcher[T]) Get(ctx context.Context, id string) (*T, error) {
	t := d.Slice.Begin(store.KindGet)
	rec, err := Run(ctx, d.Runner, d.Notifier, d.spec(VerbGet, id), func(ctx context.Context) (*T, error) {
		return d.Binding.GetByID(ctx, id)
	})
	if err != nil {
		d.Slice.Reject(t, Message(err, d.spec(VerbGet, id)))
		return nil, err
	}
	d.Slice.FulfillGet(t)
	return rec, nil
}

// Create posts body and prepends the created record.
func (d Dispatcher[T]) Create(ctx context.Context, body any) (*T, error) {
	t := d.Slice.Begin(store.KindCreate)
	rec, err := Run(ctx, d.Runner, d.Notifier, d.spec(VerbCreate, ""), func(ctx context.Context) (*T, error) {
		return d.Binding.Create(ctx, body)
	})
	if err != nil {
		d.Slice.Reject(t, Message(err, d.spec(VerbCreate, "")))
		return nil, err
	}
	d.Slice.FulfillCreate(t, *rec)
	return rec, nil
}

// KeyOf returns the slice key of the loaded record with backend id id. It
// falls back to id when the record is not on the loaded page.
func (d Dispatcher[T]) KeyOf(id string) string {
	if d.IDOf == nil {
		return id
	}
	for _, it := range d.Slice.Snapshot().Items {
		if d.IDOf(it) == id {
			return d.Slice.Key(it)
		}
	}
	return id
}

// Update patches the record identified by id and replaces its slice entry,
// matched by the key it had before the update.
func (d Dispatcher[T]) Update(ctx context.Context, id string, body any) (*T, error) {
	key := d.KeyOf(id)
	t := d.Slice.Begin(store.KindUpdate)
	rec, err := Run(ctx, d.Runner, d.Notifier, d.spec(VerbUpdate, id), func(ctx context.Context) (*T, error) {
		return d.Binding.Update(ctx, id, body)
	})
	if err != nil {
		d.Slice.Reject(t, Message(err, d.spec(VerbUpdate, id)))
		return nil, err
	}
	d.warnDuplicates(ctx, key)
	d.Slice.FulfillUpdate(t, key, *rec)
	return rec, nil
}

// Delete removes the record identified by id. key is its slice key, which
// differs from id for resources keyed by a business field.
func (d Dispatcher[T]) Delete(ctx context.Context, id, key string) error {
	t := d.Slice.Begin(store.KindDelete)
	_, err := Run(ctx, d.Runner, d.Notifier, d.spec(VerbDelete, key), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, d.Binding.Delete(ctx, id)
	})
	if err != nil {
		d.Slice.Reject(t, Message(err, d.spec(VerbDelete, key)))
		return err
	}
	d.warnDuplicates(ctx, key)
	d.Slice.FulfillDelete(t, key)
	return nil
}

func (d Dispatcher[T]) warnDuplicates(ctx context.Context, key string) {
	if n := d.Slice.Duplicates(key); n > 1 {
		d.Runner.logger.WarnContext(ctx, "ambiguous record key, only the first match is reconciled",
			slog.String("resource", d.Base.label()),
			slog.String("key", key),
			slog.Int("matches", n),
		)
	}
}

func (d Dispatcher[T]) staleResult(ctx context.Context) {
	d.Runner.metrics.StaleResult(d.Base.label())
	d.Runner.logger.DebugContext(ctx, "discarded superseded list result",
		slog.String("resource", d.Base.label()),
	)
}
