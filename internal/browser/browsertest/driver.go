// Package browsertest provides a scripted in-memory browser.Driver for
// testing page objects and the facade without a real browser.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kuitang/hrm-e2e/internal/browser"
	"github.com/kuitang/hrm-e2e/internal/errs"
)

// Element is the scripted state of one query's match.
type Element struct {
	Visible bool
	Text    string
	Value   string
	Attrs   map[string]string
	Checked bool

	// Count is the number of matches reported by Count; zero means one.
	Count int

	// VisibleAfter hides the element from the first N IsVisible probes.
	VisibleAfter int
	// HideAfter hides a visible element once N IsVisible probes have seen
	// it, like a loading spinner that comes and goes.
	HideAfter int

	FillErr  error
	ClickErr error
}

// Action is one recorded driver call.
type Action struct {
	Op     string
	Target string
	Value  string
}

// Driver is a scripted browser.Driver. Elements are keyed by the query's
// String form; a query with no scripted element behaves like a selector
// that matches nothing.
type Driver struct {
	mu       sync.Mutex
	elements map[string]*Element
	onClick  map[string]func(*Driver)
	onGoto   map[string]func(*Driver)
	url      string
	title    string
	actions  []Action
	shots    int
	ShotErr  error
}

var _ browser.Driver = (*Driver)(nil)

// New creates an empty driver on about:blank.
func New() *Driver {
	return &Driver{
		elements: make(map[string]*Element),
		onClick:  make(map[string]func(*Driver)),
		onGoto:   make(map[string]func(*Driver)),
		url:      "about:blank",
	}
}

// Set scripts the element matched by q. It is safe to call from click hooks.
func (d *Driver) Set(q browser.Query, el Element) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setLocked(q, el)
	return d
}

func (d *Driver) setLocked(q browser.Query, el Element) {
	copied := el
	d.elements[q.String()] = &copied
}

// Remove makes q match nothing.
func (d *Driver) Remove(q browser.Query) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.elements, q.String())
	return d
}

// Element returns a copy of the scripted state for q.
func (d *Driver) Element(q browser.Query) (Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, ok := d.elements[q.String()]
	if !ok {
		return Element{}, false
	}
	return *el, true
}

// OnClick registers fn to run after q is clicked.
func (d *Driver) OnClick(q browser.Query, fn func(*Driver)) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onClick[q.String()] = fn
	return d
}

// OnGoto registers fn to run after path is loaded.
func (d *Driver) OnGoto(path string, fn func(*Driver)) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onGoto[path] = fn
	return d
}

// SetURL sets the current page URL.
func (d *Driver) SetURL(u string) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = u
	return d
}

// SetTitle sets the current document title.
func (d *Driver) SetTitle(title string) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title = title
	return d
}

// Actions returns every recorded call in order.
func (d *Driver) Actions() []Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Action, len(d.actions))
	copy(out, d.actions)
	return out
}

// ActionsOf returns recorded calls with the given op.
func (d *Driver) ActionsOf(op string) []Action {
	var out []Action
	for _, a := range d.Actions() {
		if a.Op == op {
			out = append(out, a)
		}
	}
	return out
}

// Did reports whether op was recorded against q.
func (d *Driver) Did(op string, q browser.Query) bool {
	for _, a := range d.ActionsOf(op) {
		if a.Target == q.String() {
			return true
		}
	}
	return false
}

// Screenshots returns how many screenshots were taken.
func (d *Driver) Screenshots() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shots
}

func (d *Driver) record(op string, q browser.Query, value string) {
	d.actions = append(d.actions, Action{Op: op, Target: q.String(), Value: value})
}

func notFound(op string, q browser.Query) error {
	return errs.New(errs.Timeout, fmt.Sprintf("%s %s: no element matched", op, q))
}

func (d *Driver) lookup(op string, q browser.Query) (*Element, error) {
	el, ok := d.elements[q.String()]
	if !ok {
		return nil, notFound(op, q)
	}
	return el, nil
}

func (d *Driver) Goto(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	d.actions = append(d.actions, Action{Op: "goto", Target: path})
	d.url = path
	hook := d.onGoto[path]
	d.mu.Unlock()
	if hook != nil {
		hook(d)
	}
	return nil
}

func (d *Driver) WaitLoad(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, Action{Op: "wait_load"})
	return nil
}

func (d *Driver) Fill(ctx context.Context, q browser.Query, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	el, err := d.lookup("fill", q)
	if err != nil {
		return err
	}
	if el.FillErr != nil {
		return el.FillErr
	}
	el.Value = value
	d.record("fill", q, value)
	return nil
}

func (d *Driver) Click(ctx context.Context, q browser.Query) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	el, err := d.lookup("click", q)
	if err == nil && el.ClickErr != nil {
		err = el.ClickErr
	}
	if err != nil {
		d.mu.Unlock()
		return err
	}
	d.record("click", q, "")
	hook := d.onClick[q.String()]
	d.mu.Unlock()
	if hook != nil {
		hook(d)
	}
	return nil
}

func (d *Driver) Check(ctx context.Context, q browser.Query) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	el, err := d.lookup("check", q)
	if err != nil {
		return err
	}
	el.Checked = true
	d.record("check", q, "")
	return nil
}

func (d *Driver) ScrollIntoView(ctx context.Context, q browser.Query) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.lookup("scroll", q); err != nil {
		return err
	}
	d.record("scroll", q, "")
	return nil
}

// WaitVisible succeeds for any scripted element that is or will become
// visible; it never sleeps.
func (d *Driver) WaitVisible(ctx context.Context, q browser.Query, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	el, err := d.lookup("wait visible", q)
	if err != nil {
		return err
	}
	if !el.Visible && el.VisibleAfter == 0 {
		return notFound("wait visible", q)
	}
	el.Visible = true
	el.VisibleAfter = 0
	d.record("wait_visible", q, "")
	return nil
}

func (d *Driver) WaitHidden(ctx context.Context, q browser.Query, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("wait_hidden", q, "")
	el, ok := d.elements[q.String()]
	if ok && el.Visible {
		return errs.New(errs.Timeout, fmt.Sprintf("wait hidden %s: still visible", q))
	}
	return nil
}

func (d *Driver) IsVisible(ctx context.Context, q browser.Query) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	el, ok := d.elements[q.String()]
	if !ok {
		return false, nil
	}
	if el.VisibleAfter > 0 {
		el.VisibleAfter--
		if el.VisibleAfter == 0 {
			el.Visible = true
		}
		return false, nil
	}
	if el.Visible && el.HideAfter > 0 {
		el.HideAfter--
		if el.HideAfter == 0 {
			el.Visible = false
		}
		return true, nil
	}
	return el.Visible, nil
}

func (d *Driver) Text(ctx context.Context, q browser.Query) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	el, err := d.lookup("read text", q)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(el.Text), nil
}

func (d *Driver) InputValue(ctx context.Context, q browser.Query) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	el, err := d.lookup("read value", q)
	if err != nil {
		return "", err
	}
	return el.Value, nil
}

func (d *Driver) Attribute(ctx context.Context, q browser.Query, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	el, err := d.lookup("read attribute", q)
	if err != nil {
		return "", err
	}
	return el.Attrs[name], nil
}

func (d *Driver) Count(ctx context.Context, q browser.Query) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	el, ok := d.elements[q.String()]
	if !ok {
		return 0, nil
	}
	if el.Count == 0 {
		return 1, nil
	}
	return el.Count, nil
}

func (d *Driver) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

func (d *Driver) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title, nil
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ShotErr != nil {
		return nil, d.ShotErr
	}
	d.shots++
	return []byte(fmt.Sprintf("PNG-%d", d.shots)), nil
}
