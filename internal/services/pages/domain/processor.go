package domain

import (
	"context"
	"fmt"
	"time"

	commands "github.com/louisbranch/signalpost/internal/services/commands/domain"
	"github.com/louisbranch/signalpost/internal/services/pages/editor"
)

// Store is the domain persistence boundary for pages.
type Store interface {
	GetPageByID(ctx context.Context, pageID string) (Page, error)
	PutPage(ctx context.Context, page Page) error
	SetPageContent(ctx context.Context, pageID string, content string, updatedAt time.Time) error
}

// ModuleProcessors returns the command processors for page module editing,
// one per supported operation, sharing the given store and kind set.
func ModuleProcessors(store Store, kinds *KindSet, clock func() time.Time) []commands.Processor {
	if kinds == nil {
		kinds = DefaultKinds()
	}
	if clock == nil {
		clock = time.Now
	}
	return []commands.Processor{
		&moduleProcessor{operation: OperationUpdate, store: store, kinds: kinds, clock: clock},
		&moduleProcessor{operation: OperationDelete, store: store, kinds: kinds, clock: clock},
		&moduleProcessor{operation: OperationInsert, store: store, kinds: kinds, clock: clock},
	}
}

// moduleProcessor applies one operation to a module inside a resolved page
// and persists the page's rewritten content on success.
type moduleProcessor struct {
	operation string
	store     Store
	kinds     *KindSet
	clock     func() time.Time
}

func (p *moduleProcessor) Operation() string {
	return p.operation
}

func (p *moduleProcessor) Apply(ctx context.Context, cctx *commands.Context) (commands.Result, error) {
	if p == nil || p.store == nil {
		return commands.Result{}, ErrStoreNotConfigured
	}
	pageRef, ok := cctx.FirstRef(RefTypePage)
	if !ok {
		return commands.NoAction(), nil
	}
	page, ok := cctx.Object(pageRef).(*Page)
	if !ok || page == nil {
		return commands.NoAction(), nil
	}
	moduleRef, ok := cctx.FirstRef(RefTypeModule)
	if !ok {
		return commands.NoAction(), nil
	}

	ed := editor.Parse(page.Content)
	result, err := p.kinds.ApplyModuleCommand(ed, cctx.Operation, moduleRef.ID, cctx.HTMLPayload, cctx.TextPayload)
	if err != nil {
		return commands.Result{}, err
	}
	if result.Status != commands.StatusSuccess {
		return result, nil
	}

	content, err := ed.Serialize()
	if err != nil {
		return commands.Result{}, fmt.Errorf("serialize page %s: %w", page.ID, err)
	}
	if err := p.store.SetPageContent(ctx, page.ID, content, p.clock().UTC()); err != nil {
		return commands.Result{}, fmt.Errorf("persist page %s: %w", page.ID, err)
	}
	return result, nil
}
