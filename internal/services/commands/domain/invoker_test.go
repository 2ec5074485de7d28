package domain

import (
	"context"
	"errors"
	"testing"
)

type stubProcessor struct {
	operation string
	apply     func(ctx context.Context, cctx *Context) (Result, error)
	calls     int
}

func (p *stubProcessor) Operation() string { return p.operation }

func (p *stubProcessor) Apply(ctx context.Context, cctx *Context) (Result, error) {
	p.calls++
	if p.apply == nil {
		return Succeeded(""), nil
	}
	return p.apply(ctx, cctx)
}

func TestRegistryRejectsDuplicateOperation(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry(&stubProcessor{operation: "UPDATE"}, &stubProcessor{operation: "UPDATE"}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestInvokeMalformedLine(t *testing.T) {
	t.Parallel()

	registry, err := NewRegistry(&stubProcessor{operation: "UPDATE"})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	invoker := NewInvoker(registry, NewResolverRegistry())
	if _, err := invoker.Invoke(context.Background(), " ! module:m1", "", ""); !errors.Is(err, ErrMalformedLine) {
		t.Fatalf("err = %v, want ErrMalformedLine", err)
	}
}

func TestInvokeUnknownOperationIsNoAction(t *testing.T) {
	t.Parallel()

	registry, err := NewRegistry(&stubProcessor{operation: "UPDATE"})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	invoker := NewInvoker(registry, NewResolverRegistry())
	result, err := invoker.Invoke(context.Background(), "REFRESH ! module:m1", "", "")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result.Status != StatusNoAction {
		t.Fatalf("status = %q, want %q", result.Status, StatusNoAction)
	}
}

func TestInvokeOperationMatchIsCaseSensitive(t *testing.T) {
	t.Parallel()

	processor := &stubProcessor{operation: "UPDATE"}
	registry, err := NewRegistry(processor)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	invoker := NewInvoker(registry, NewResolverRegistry())
	result, err := invoker.Invoke(context.Background(), "update ! module:m1", "", "")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result.Status != StatusNoAction {
		t.Fatalf("status = %q, want %q", result.Status, StatusNoAction)
	}
	if processor.calls != 0 {
		t.Fatalf("processor calls = %d, want 0", processor.calls)
	}
}

func TestInvokeResolvesReferences(t *testing.T) {
	t.Parallel()

	type page struct{ id string }
	processor := &stubProcessor{
		operation: "UPDATE",
		apply: func(_ context.Context, cctx *Context) (Result, error) {
			ref, ok := cctx.FirstRef("page")
			if !ok {
				t.Fatal("expected page ref")
			}
			target, ok := cctx.Object(ref).(*page)
			if !ok || target == nil {
				t.Fatal("expected resolved page object")
			}
			if target.id != "42" {
				t.Fatalf("resolved page id = %q, want %q", target.id, "42")
			}
			if cctx.HTMLPayload != "<p>x</p>" || cctx.TextPayload != "x" {
				t.Fatalf("payloads = (%q, %q)", cctx.HTMLPayload, cctx.TextPayload)
			}
			return Succeeded(""), nil
		},
	}
	registry, err := NewRegistry(processor)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	resolvers := NewResolverRegistry()
	err = resolvers.RegisterResolver("page", ResolverFunc(func(_ context.Context, _ string, pageID string) (any, error) {
		if pageID != "42" {
			return nil, nil
		}
		return &page{id: pageID}, nil
	}))
	if err != nil {
		t.Fatalf("register resolver: %v", err)
	}

	invoker := NewInvoker(registry, resolvers)
	result, err := invoker.Invoke(context.Background(), "UPDATE ! page:42 >> module:m1", "<p>x</p>", "x")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("status = %q, want %q", result.Status, StatusSuccess)
	}
	if processor.calls != 1 {
		t.Fatalf("processor calls = %d, want 1", processor.calls)
	}
}

func TestInvokeUnresolvedReferenceStaysNil(t *testing.T) {
	t.Parallel()

	processor := &stubProcessor{
		operation: "UPDATE",
		apply: func(_ context.Context, cctx *Context) (Result, error) {
			ref, _ := cctx.FirstRef("page")
			if cctx.Object(ref) != nil {
				t.Fatal("expected nil object for missing target")
			}
			return NoAction(), nil
		},
	}
	registry, err := NewRegistry(processor)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	resolvers := NewResolverRegistry()
	err = resolvers.RegisterResolver("page", ResolverFunc(func(context.Context, string, string) (any, error) {
		return nil, nil
	}))
	if err != nil {
		t.Fatalf("register resolver: %v", err)
	}

	invoker := NewInvoker(registry, resolvers)
	result, err := invoker.Invoke(context.Background(), "UPDATE ! page:gone", "", "")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result.Status != StatusNoAction {
		t.Fatalf("status = %q, want %q", result.Status, StatusNoAction)
	}
}

func TestInvokeProcessorErrorPropagates(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("boom")
	registry, err := NewRegistry(&stubProcessor{
		operation: "UPDATE",
		apply: func(context.Context, *Context) (Result, error) {
			return Result{}, wantErr
		},
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	invoker := NewInvoker(registry, NewResolverRegistry())
	if _, err := invoker.Invoke(context.Background(), "UPDATE ! module:m1", "", ""); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want propagated processor error", err)
	}
}
