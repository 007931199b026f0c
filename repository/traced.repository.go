package repository

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-creek/creek/stream"
)

// NewTracedRepository decorates repo so that each operation records an
// OpenTelemetry span. For the lazy handles the span covers the delivery, not
// the construction, since constructing a handle performs no work.
func NewTracedRepository[E any, ID id](
	traceProvider trace.TracerProvider,
	repo Repository[E, ID],
) *TracedRepository[E, ID] {
	return &TracedRepository[E, ID]{
		tracer: traceProvider.Tracer("creek.repository"),
		repo:   repo,
	}
}

// TracedRepository is a tracing decorator for any Repository implementation.
type TracedRepository[E any, ID id] struct {
	tracer trace.Tracer
	repo   Repository[E, ID]
}

func (repo *TracedRepository[E, ID]) NextID(ctx context.Context) (ID, error) { //nolint:ireturn // valid use of generics
	ctx, span := repo.span(ctx, "NextID")
	defer span.End()

	return repo.repo.NextID(ctx) //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository[E, ID]) Create(ctx context.Context, entity E) error {
	ctx, span := repo.span(ctx, "Create")
	defer span.End()

	return repo.repo.Create(ctx, entity) //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository[E, ID]) Read(ctx context.Context, id ID) (E, error) { //nolint:ireturn // valid use of generics
	ctx, span := repo.span(ctx, "Read")
	defer span.End()

	return repo.repo.Read(ctx, id) //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository[E, ID]) Update(ctx context.Context, entity E) error {
	ctx, span := repo.span(ctx, "Update")
	defer span.End()

	return repo.repo.Update(ctx, entity) //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository[E, ID]) Save(ctx context.Context, entity E) error {
	ctx, span := repo.span(ctx, "Save")
	defer span.End()

	return repo.repo.Save(ctx, entity) //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository[E, ID]) Delete(ctx context.Context, entity E) error {
	ctx, span := repo.span(ctx, "Delete")
	defer span.End()

	return repo.repo.Delete(ctx, entity) //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository[E, ID]) DeleteByID(ctx context.Context, id ID) error {
	ctx, span := repo.span(ctx, "DeleteByID")
	defer span.End()

	return repo.repo.DeleteByID(ctx, id) //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository[E, ID]) DeleteAll(ctx context.Context) error {
	ctx, span := repo.span(ctx, "DeleteAll")
	defer span.End()

	return repo.repo.DeleteAll(ctx) //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository[E, ID]) All(ctx context.Context) ([]E, error) {
	ctx, span := repo.span(ctx, "All")
	defer span.End()

	return repo.repo.All(ctx) //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository[E, ID]) Exists(ctx context.Context, id ID) (bool, error) {
	ctx, span := repo.span(ctx, "Exists")
	defer span.End()

	return repo.repo.Exists(ctx, id) //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository[E, ID]) Count(ctx context.Context) (int, error) {
	ctx, span := repo.span(ctx, "Count")
	defer span.End()

	return repo.repo.Count(ctx) //nolint:wrapcheck // this is decorator
}

func (repo *TracedRepository[E, ID]) GetByID(id ID) stream.Mono[E] { //nolint:ireturn // valid use of generics
	return stream.MonoFrom(func(sink *stream.Sink[E]) {
		_, span := repo.span(context.Background(), "GetByID")
		defer span.End()

		repo.repo.GetByID(id).Emit(sink)
	})
}

func (repo *TracedRepository[E, ID]) FindAll() stream.Flux[E] { //nolint:ireturn // valid use of generics
	return stream.FluxFrom(func(sink *stream.Sink[E]) {
		_, span := repo.span(context.Background(), "FindAll")
		defer span.End()

		repo.repo.FindAll().Emit(sink)
	})
}

func (repo *TracedRepository[E, ID]) span(ctx context.Context, method string) (context.Context, trace.Span) { //nolint:ireturn,spancheck // span is ended by the caller
	return repo.tracer.Start(ctx, "repository",
		trace.WithAttributes(attribute.String("method", method)),
	)
}
