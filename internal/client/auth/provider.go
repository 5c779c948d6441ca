// Package auth is an in-memory mock authentication provider. Every call
// succeeds after a fixed delay given non-empty credentials.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/ecosense/internal/logging"
)

var ErrMissingCredentials = errors.New("email and password are required")

type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Listener receives the current user after every change; nil means
// signed out.
type Listener func(*User)

// DefaultDelay mimics a network round trip.
const DefaultDelay = time.Second

type Provider struct {
	delay  time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu        sync.Mutex
	current   *User
	users     map[string]User
	listeners map[int]Listener
	nextID    int
}

type Option func(*Provider)

func WithClock(now func() time.Time) Option { return func(p *Provider) { p.now = now } }

func WithLogger(l *zap.Logger) Option { return func(p *Provider) { p.logger = logging.Or(l) } }

// NewProvider returns a signed-out provider. A negative delay means none.
func NewProvider(delay time.Duration, opts ...Option) *Provider {
	if delay < 0 {
		delay = 0
	}
	p := &Provider{
		delay:     delay,
		now:       time.Now,
		logger:    zap.NewNop(),
		users:     make(map[string]User),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Current() *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	u := *p.current
	return &u
}

// Subscribe registers fn; listeners run synchronously, in no particular
// order, after the change is applied.
func (p *Provider) Subscribe(fn Listener) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

// SignIn signs in an existing account or, this being a mock, creates one.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*User, error) {
	return p.authenticate(ctx, "", email, password)
}

func (p *Provider) SignUp(ctx context.Context, name, email, password string) (*User, error) {
	return p.authenticate(ctx, name, email, password)
}

func (p *Provider) SignOut(ctx context.Context) error {
	if err := p.wait(ctx); err != nil {
		return err
	}
	p.set(nil)
	return nil
}

func (p *Provider) authenticate(ctx context.Context, name, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	u, ok := p.users[email]
	if !ok {
		u = User{ID: uuid.NewString(), Email: email, CreatedAt: p.now()}
	}
	if name = strings.TrimSpace(name); name != "" {
		u.Name = name
	}
	if u.Name == "" {
		u.Name, _, _ = strings.Cut(email, "@")
	}
	p.users[email] = u
	p.mu.Unlock()

	p.logger.Debug("signed in", zap.String("user_id", u.ID))
	p.set(&u)
	out := u
	return &out, nil
}

func (p *Provider) set(u *User) {
	p.mu.Lock()
	p.current = u
	listeners := make([]Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.mu.Unlock()

	for _, l := range listeners {
		if u == nil {
			l(nil)
			continue
		}
		cp := *u
		l(&cp)
	}
}

func (p *Provider) wait(ctx context.Context) error {
	if p.delay == 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
