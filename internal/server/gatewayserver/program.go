package gatewayserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Call is the input of a program run.
type Call struct {
	Server string
	UserID string
	// CommArea holds a private copy of the request COMMAREA.
	CommArea []byte
}

// Program runs one call and returns the output COMMAREA. A nil result is
// an empty reply. Returning an *Abend ends the call abnormally.
type Program func(ctx context.Context, call *Call) ([]byte, error)

// Abend ends a program call abnormally with a four character code.
type Abend struct {
	Code string
}

func (a *Abend) Error() string {
	return "transaction abend " + a.Code
}

// Abend codes raised by the daemon itself.
const (
	AbendProgramNotFound = "AEI0"
	AbendProgramCheck    = "ASRA"
)

// Registry maps program names to implementations.
type Registry struct {
	mu       sync.RWMutex
	programs map[string]Program
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{programs: make(map[string]Program)}
}

// Register installs p under name, replacing any previous program.
func (r *Registry) Register(name string, p Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.programs[strings.ToUpper(name)] = p
}

// Lookup returns the program registered under name.
func (r *Registry) Lookup(name string) (Program, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.programs[strings.ToUpper(strings.TrimSpace(name))]
	return p, ok
}

// Names returns the registered program names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.programs))
	for name := range r.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtins returns the programs shipped with the daemon.
//
//	ECHO     returns the COMMAREA unchanged
//	UPPER    returns the COMMAREA with ASCII letters upper-cased
//	EMPTY    returns an empty COMMAREA
//	ABEND    abends with the code in the COMMAREA, ASRA by default
//	SLEEP    waits for the milliseconds given in the COMMAREA, then echoes it
//	TIME     returns the current UTC time in RFC 3339 format
func Builtins() map[string]Program {
	return map[string]Program{
		"ECHO":  echoProgram,
		"UPPER": upperProgram,
		"EMPTY": emptyProgram,
		"ABEND": abendProgram,
		"SLEEP": sleepProgram,
		"TIME":  timeProgram,
	}
}

// InstallAllBuiltins registers every builtin.
func InstallAllBuiltins(r *Registry) {
	for name, p := range Builtins() {
		r.Register(name, p)
	}
}

// InstallBuiltins registers the named builtins, or all of them when names
// is empty.
func InstallBuiltins(r *Registry, names []string) error {
	if len(names) == 0 {
		InstallAllBuiltins(r)
		return nil
	}
	builtins := Builtins()
	for _, name := range names {
		p, ok := builtins[strings.ToUpper(strings.TrimSpace(name))]
		if !ok {
			return fmt.Errorf("unknown builtin program %q", name)
		}
		r.Register(name, p)
	}
	return nil
}

func echoProgram(_ context.Context, call *Call) ([]byte, error) {
	return call.CommArea, nil
}

func upperProgram(_ context.Context, call *Call) ([]byte, error) {
	out := call.CommArea
	for i, b := range out {
		if b >= 'a' && b <= 'z' {
			out[i] = b - 'a' + 'A'
		}
	}
	return out, nil
}

func emptyProgram(context.Context, *Call) ([]byte, error) {
	return nil, nil
}

func abendProgram(_ context.Context, call *Call) ([]byte, error) {
	code := string(bytes.TrimRight(call.CommArea, "\x00 "))
	if code == "" {
		code = AbendProgramCheck
	}
	if len(code) > 4 {
		code = code[:4]
	}
	return nil, &Abend{Code: code}
}

func sleepProgram(ctx context.Context, call *Call) ([]byte, error) {
	ms, err := strconv.Atoi(string(bytes.TrimRight(call.CommArea, "\x00 ")))
	if err != nil || ms < 0 {
		return nil, errors.New("SLEEP expects a non-negative millisecond count")
	}

	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
		return call.CommArea, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func timeProgram(context.Context, *Call) ([]byte, error) {
	return []byte(time.Now().UTC().Format(time.RFC3339)), nil
}
