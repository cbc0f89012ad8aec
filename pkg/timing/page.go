package timing

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/libradesk/libradesk/internal/utils"
	"github.com/libradesk/libradesk/pkg/branch"
	log "github.com/sirupsen/logrus"
)

type LoadState string

const (
	StateIdle      LoadState = "idle"
	StateNotLoaded LoadState = "notLoaded"
	StateLoading   LoadState = "loading"
	StateLoaded    LoadState = "loaded"
	StateError     LoadState = "error"
	StateSaving    LoadState = "saving"
)

var (
	ErrSaveInProgress  = errors.New("a save is already in progress for this branch")
	ErrBranchNotLoaded = errors.New("branch timings are not loaded")
)

type BranchDirectory interface {
	ListBranches(ctx context.Context) ([]branch.Branch, error)
	CreateBranch(ctx context.Context, name string, address string) (branch.Branch, error)
}

// BranchTimingState is a snapshot of one branch as the editor page sees it.
type BranchTimingState struct {
	BranchId     int
	State        LoadState
	View         *BranchTimingView
	Dirty        bool
	Saving       bool
	ErrorMessage string
}

type operation string

const (
	opBranches operation = "branches"
	opLoad     operation = "load"
	opSave     operation = "save"
	opCreate   operation = "create"
)

type branchEntry struct {
	state  LoadState
	saving bool
	err    string
}

// Page drives the branch hours admin page of one editor session: the branch
// list, the per-branch views held in cache and the save cycle. Storage calls
// are made without holding the page lock, so loads for different branches
// overlap and the last one to complete is what the cache keeps. Whether a
// branch has unsaved edits is kept in the cache next to its view.
type Page struct {
	service  Service
	branches BranchDirectory
	cache    Cache
	clock    utils.Clock

	mu            sync.Mutex
	branchesState LoadState
	branchList    []branch.Branch
	entries       map[int]*branchEntry
	banner        string
	bannerOp      operation

	// serialises read-modify-write of cached views
	editMu sync.Mutex
}

func NewPage(service Service, branches BranchDirectory, cache Cache, clock utils.Clock) *Page {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &Page{
		service:       service,
		branches:      branches,
		cache:         cache,
		clock:         clock,
		branchesState: StateIdle,
		entries:       make(map[int]*branchEntry),
	}
}

func (p *Page) LoadBranches(ctx context.Context) ([]branch.Branch, error) {
	p.mu.Lock()
	p.branchesState = StateLoading
	p.mu.Unlock()

	list, err := p.branches.ListBranches(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.branchesState = StateError
		p.fail(opBranches, err)
		return slices.Clone(p.branchList), err
	}
	p.branchesState = StateLoaded
	p.branchList = slices.Clone(list)
	p.succeed(opBranches)
	return slices.Clone(p.branchList), nil
}

// Branches returns the last loaded branch list and its state.
func (p *Page) Branches() ([]branch.Branch, LoadState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.branchList), p.branchesState
}

// SelectBranch returns the cached view of a branch, loading it first when it
// is not cached or forceReload is set. A forced reload discards unsaved edits.
func (p *Page) SelectBranch(ctx context.Context, branchId int, forceReload bool) (BranchTimingView, error) {
	if !forceReload {
		if cached, ok := p.cache.Get(ctx, branchId); ok {
			p.mu.Lock()
			entry := p.entry(branchId)
			if entry.state == StateNotLoaded || entry.state == StateError {
				entry.state = StateLoaded
			}
			p.mu.Unlock()
			return cached.View, nil
		}
	}
	return p.load(ctx, branchId)
}

func (p *Page) load(ctx context.Context, branchId int) (BranchTimingView, error) {
	p.mu.Lock()
	entry := p.entry(branchId)
	if !entry.saving {
		entry.state = StateLoading
	}
	p.mu.Unlock()
	log.Debugf("loading timings for branch %d", branchId)

	view, err := p.service.Load(ctx, branchId)
	if err != nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		entry.state = StateError
		entry.err = err.Error()
		p.fail(opLoad, err)
		return BranchTimingView{}, err
	}

	if err := p.cache.Put(ctx, branchId, CachedView{View: view}); err != nil {
		log.Warnf("failed to cache timings for branch %d: %v", branchId, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !entry.saving {
		entry.state = StateLoaded
	}
	entry.err = ""
	p.succeed(opLoad)
	log.Debugf("loaded timings for branch %d", branchId)
	return view, nil
}

// View returns the cached view of a branch, including unsaved edits.
func (p *Page) View(ctx context.Context, branchId int) (BranchTimingView, bool) {
	cached, ok := p.cache.Get(ctx, branchId)
	return cached.View, ok
}

// Edit runs fn against an editor over the cached view and stores the result.
// Any change reported by the editor marks the branch dirty.
func (p *Page) Edit(ctx context.Context, branchId int, fn func(e *Editor) BranchTimingView) (BranchTimingView, error) {
	p.editMu.Lock()
	defer p.editMu.Unlock()

	p.mu.Lock()
	saving := p.entry(branchId).saving
	p.mu.Unlock()
	if saving {
		return BranchTimingView{}, ErrSaveInProgress
	}

	cached, ok := p.cache.Get(ctx, branchId)
	if !ok {
		return BranchTimingView{}, ErrBranchNotLoaded
	}

	changed := false
	editor := NewEditor(cached.View, p.clock, func(BranchTimingView) { changed = true })
	next := fn(editor)
	if !changed {
		return next, nil
	}

	if err := p.cache.Put(ctx, branchId, CachedView{View: next, Dirty: true}); err != nil {
		return BranchTimingView{}, err
	}
	return next, nil
}

// Save writes the cached view of a branch to storage and replaces it with a
// fresh reload. Only one save per branch runs at a time. After a failed save
// the edits stay in cache and the branch stays dirty.
func (p *Page) Save(ctx context.Context, branchId int) (BranchTimingView, error) {
	p.editMu.Lock()
	p.mu.Lock()
	entry := p.entry(branchId)
	if entry.saving {
		p.mu.Unlock()
		p.editMu.Unlock()
		return BranchTimingView{}, ErrSaveInProgress
	}
	entry.saving = true
	entry.state = StateSaving
	p.mu.Unlock()
	cached, ok := p.cache.Get(ctx, branchId)
	p.editMu.Unlock()

	if !ok {
		p.mu.Lock()
		entry.saving = false
		entry.state = StateNotLoaded
		p.mu.Unlock()
		return BranchTimingView{}, ErrBranchNotLoaded
	}

	log.Debugf("saving timings for branch %d", branchId)
	if err := p.service.Save(ctx, cached.View); err != nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		entry.saving = false
		entry.state = StateLoaded
		entry.err = err.Error()
		p.fail(opSave, err)
		return BranchTimingView{}, err
	}

	p.mu.Lock()
	p.succeed(opSave)
	p.mu.Unlock()

	reloaded, err := p.load(ctx, branchId)
	if err != nil {
		// storage holds the saved rows, the cached edits are stale
		if invErr := p.cache.Invalidate(ctx, branchId); invErr != nil {
			log.Warnf("failed to invalidate timings for branch %d: %v", branchId, invErr)
		}
		p.mu.Lock()
		entry.saving = false
		p.mu.Unlock()
		return BranchTimingView{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	entry.saving = false
	entry.state = StateLoaded
	log.Debugf("saved timings for branch %d", branchId)
	return reloaded, nil
}

func (p *Page) CreateBranch(ctx context.Context, name string, address string) (branch.Branch, error) {
	created, err := p.branches.CreateBranch(ctx, name, address)
	if err != nil {
		p.mu.Lock()
		p.fail(opCreate, err)
		p.mu.Unlock()
		return branch.Branch{}, err
	}
	p.mu.Lock()
	p.succeed(opCreate)
	p.mu.Unlock()
	p.addBranch(created)
	return created, nil
}

// addBranch inserts b into a loaded branch list, keeping name order. Branches
// already listed are ignored.
func (p *Page) addBranch(b branch.Branch) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.branchesState != StateLoaded {
		return
	}
	if slices.ContainsFunc(p.branchList, func(existing branch.Branch) bool { return existing.Id == b.Id }) {
		return
	}
	idx, _ := slices.BinarySearchFunc(p.branchList, b, func(a, b branch.Branch) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Id, b.Id))
	})
	p.branchList = slices.Insert(p.branchList, idx, b)
}

func (p *Page) Status(ctx context.Context, branchId int) BranchTimingState {
	p.mu.Lock()
	entry := p.entry(branchId)
	status := BranchTimingState{
		BranchId:     branchId,
		State:        entry.state,
		Saving:       entry.saving,
		ErrorMessage: entry.err,
	}
	p.mu.Unlock()

	if cached, ok := p.cache.Get(ctx, branchId); ok {
		status.View = &cached.View
		status.Dirty = cached.Dirty
	}
	return status
}

// ErrorMessage returns the raw text of the last failure, or "" once an
// operation of the same kind has succeeded since.
func (p *Page) ErrorMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.banner
}

// entry must be called with p.mu held.
func (p *Page) entry(branchId int) *branchEntry {
	entry, ok := p.entries[branchId]
	if !ok {
		entry = &branchEntry{state: StateNotLoaded}
		p.entries[branchId] = entry
	}
	return entry
}

func (p *Page) fail(op operation, err error) {
	p.banner = err.Error()
	p.bannerOp = op
}

func (p *Page) succeed(op operation) {
	if p.bannerOp == op {
		p.banner = ""
		p.bannerOp = ""
	}
}
