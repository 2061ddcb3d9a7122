// Package memory is an in-process StorageAdapter. It enforces the same
// uniqueness and reference rules as the Postgres adapter and is used when
// no database is configured and in tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lborres/inkwell/core"
)

var _ core.StorageAdapter = (*Adapter)(nil)

type Adapter struct {
	mu sync.RWMutex

	users        map[string]*core.User
	userByEmail  map[string]string
	accounts     map[string]*core.Account
	sessions     map[string]*core.Session // by token hash
	categories   map[string]*core.Category
	categorySlug map[string]string
	posts        map[string]*core.Post
	postSlug     map[string]string

	// seq orders records created within the same clock tick.
	seq   map[string]int64
	next  int64
	now   func() time.Time
	newID func() string
}

func New() *Adapter {
	return &Adapter{
		users:        make(map[string]*core.User),
		userByEmail:  make(map[string]string),
		accounts:     make(map[string]*core.Account),
		sessions:     make(map[string]*core.Session),
		categories:   make(map[string]*core.Category),
		categorySlug: make(map[string]string),
		posts:        make(map[string]*core.Post),
		postSlug:     make(map[string]string),
		seq:          make(map[string]int64),
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

func (a *Adapter) stamp(id string) time.Time {
	a.next++
	a.seq[id] = a.next
	return a.now().UTC()
}

// newestFirst sorts ids by creation order, most recent first.
func (a *Adapter) newestFirst(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return a.seq[ids[i]] > a.seq[ids[j]] })
}

func window(total, limit, offset int) (int, int) {
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return offset, end
}

func checkCtx(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

// ============================================
// USERS
// ============================================

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *Adapter) CreateUser(ctx context.Context, u *core.User) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.insertUserLocked(u)
}

// CreateUserWithAccount inserts both records under one lock.
func (a *Adapter) CreateUserWithAccount(ctx context.Context, u *core.User, acc *core.Account) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.insertUserLocked(u); err != nil {
		return err
	}
	acc.UserID = u.ID
	if acc.AccountID == "" {
		acc.AccountID = u.ID
	}
	return a.insertAccountLocked(acc)
}

func (a *Adapter) insertUserLocked(u *core.User) error {
	key := emailKey(u.Email)
	if _, taken := a.userByEmail[key]; taken {
		return core.ErrUserExists
	}

	u.ID = a.newID()
	u.CreatedAt = a.stamp(u.ID)
	u.UpdatedAt = u.CreatedAt

	stored := *u
	a.users[u.ID] = &stored
	a.userByEmail[key] = u.ID
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	u, ok := a.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	id, ok := a.userByEmail[emailKey(email)]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	cp := *a.users[id]
	return &cp, nil
}

func (a *Adapter) GetUsersByIDs(ctx context.Context, ids []string) ([]*core.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]*core.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := a.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (a *Adapter) ListUsers(ctx context.Context, limit, offset int) ([]*core.User, int, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, 0, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]string, 0, len(a.users))
	for id := range a.users {
		ids = append(ids, id)
	}
	a.newestFirst(ids)

	start, end := window(len(ids), limit, offset)
	out := make([]*core.User, 0, end-start)
	for _, id := range ids[start:end] {
		cp := *a.users[id]
		out = append(out, &cp)
	}
	return out, len(ids), nil
}

// ============================================
// ACCOUNTS
// ============================================

func (a *Adapter) CreateAccount(ctx context.Context, acc *core.Account) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.insertAccountLocked(acc)
}

func (a *Adapter) insertAccountLocked(acc *core.Account) error {
	if _, ok := a.users[acc.UserID]; !ok {
		return core.ErrInvalidReference
	}

	acc.ID = a.newID()
	acc.CreatedAt = a.stamp(acc.ID)
	acc.UpdatedAt = acc.CreatedAt

	stored := *acc
	a.accounts[acc.ID] = &stored
	return nil
}

func (a *Adapter) GetAccountByUserAndProvider(ctx context.Context, userID, providerID string) ([]*core.Account, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []*core.Account
	for _, acc := range a.accounts {
		if acc.UserID == userID && acc.ProviderID == providerID {
			cp := *acc
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ============================================
// SESSIONS
// ============================================

func (a *Adapter) CreateSession(ctx context.Context, s *core.Session) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.users[s.UserID]; !ok {
		return core.ErrInvalidReference
	}
	stored := *s
	a.sessions[s.TokenHash] = &stored
	return nil
}

func (a *Adapter) GetSessionByHash(ctx context.Context, tokenHash string) (*core.Session, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	s, ok := a.sessions[tokenHash]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (a *Adapter) DeleteSessionByHash(ctx context.Context, tokenHash string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.sessions[tokenHash]; !ok {
		return core.ErrSessionNotFound
	}
	delete(a.sessions, tokenHash)
	return nil
}

func (a *Adapter) DeleteExpiredSessions(ctx context.Context) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	n := 0
	for hash, s := range a.sessions {
		if now.After(s.ExpiresAt) {
			delete(a.sessions, hash)
			n++
		}
	}
	return n, nil
}

// ============================================
// CATEGORIES
// ============================================

func copyCategory(c *core.Category) *core.Category {
	cp := *c
	cp.Owner = core.RefTo[core.User](c.Owner.ID)
	return &cp
}

func (a *Adapter) CreateCategory(ctx context.Context, c *core.Category) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, taken := a.categorySlug[c.Slug]; taken {
		return core.ErrSlugExists
	}
	if _, ok := a.users[c.Owner.ID]; !ok {
		return core.ErrInvalidReference
	}

	c.ID = a.newID()
	c.CreatedAt = a.stamp(c.ID)
	c.UpdatedAt = c.CreatedAt

	a.categories[c.ID] = copyCategory(c)
	a.categorySlug[c.Slug] = c.ID
	return nil
}

func (a *Adapter) GetCategoryByID(ctx context.Context, id string) (*core.Category, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	c, ok := a.categories[id]
	if !ok {
		return nil, core.ErrCategoryNotFound
	}
	return copyCategory(c), nil
}

func (a *Adapter) GetCategoryBySlug(ctx context.Context, slug string) (*core.Category, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	id, ok := a.categorySlug[slug]
	if !ok {
		return nil, core.ErrCategoryNotFound
	}
	return copyCategory(a.categories[id]), nil
}

func (a *Adapter) GetCategoriesByIDs(ctx context.Context, ids []string) ([]*core.Category, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]*core.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := a.categories[id]; ok {
			out = append(out, copyCategory(c))
		}
	}
	return out, nil
}

func (a *Adapter) ListCategories(ctx context.Context, limit, offset int) ([]*core.Category, int, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, 0, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]string, 0, len(a.categories))
	for id := range a.categories {
		ids = append(ids, id)
	}
	a.newestFirst(ids)

	start, end := window(len(ids), limit, offset)
	out := make([]*core.Category, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, copyCategory(a.categories[id]))
	}
	return out, len(ids), nil
}

func (a *Adapter) DeleteCategory(ctx context.Context, id string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.categories[id]
	if !ok {
		return core.ErrCategoryNotFound
	}
	delete(a.categories, id)
	delete(a.categorySlug, c.Slug)

	for _, p := range a.posts {
		kept := p.Categories[:0]
		for _, ref := range p.Categories {
			if ref.ID != id {
				kept = append(kept, ref)
			}
		}
		p.Categories = kept
	}
	return nil
}

// ============================================
// POSTS
// ============================================

func copyPost(p *core.Post) *core.Post {
	cp := *p
	cp.Owner = core.RefTo[core.User](p.Owner.ID)
	cp.Categories = make([]core.Ref[core.Category], len(p.Categories))
	for i, ref := range p.Categories {
		cp.Categories[i] = core.RefTo[core.Category](ref.ID)
	}
	return &cp
}

func (a *Adapter) CreatePost(ctx context.Context, p *core.Post) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, taken := a.postSlug[p.Slug]; taken {
		return core.ErrSlugExists
	}
	if _, ok := a.users[p.Owner.ID]; !ok {
		return core.ErrInvalidReference
	}
	for _, ref := range p.Categories {
		if _, ok := a.categories[ref.ID]; !ok {
			return core.ErrInvalidReference
		}
	}

	p.ID = a.newID()
	p.CreatedAt = a.stamp(p.ID)
	p.UpdatedAt = p.CreatedAt

	a.posts[p.ID] = copyPost(p)
	a.postSlug[p.Slug] = p.ID
	return nil
}

func (a *Adapter) GetPostByID(ctx context.Context, id string) (*core.Post, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	p, ok := a.posts[id]
	if !ok {
		return nil, core.ErrPostNotFound
	}
	return copyPost(p), nil
}

func (a *Adapter) ListPosts(ctx context.Context, limit, offset int) ([]*core.Post, int, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, 0, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]string, 0, len(a.posts))
	for id := range a.posts {
		ids = append(ids, id)
	}
	a.newestFirst(ids)

	start, end := window(len(ids), limit, offset)
	out := make([]*core.Post, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, copyPost(a.posts[id]))
	}
	return out, len(ids), nil
}

func (a *Adapter) DeletePost(ctx context.Context, id string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.posts[id]
	if !ok {
		return core.ErrPostNotFound
	}
	delete(a.posts, id)
	delete(a.postSlug, p.Slug)
	return nil
}
