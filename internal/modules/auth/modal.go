package auth

import "sync"

type View string

const (
	ViewLogin    View = "LOGIN"
	ViewRegister View = "REGISTER"
	ViewForgot   View = "FORGOT"
	ViewVerify   View = "VERIFY"
	ViewReset    View = "RESET"
)

func (v View) Valid() bool {
	switch v {
	case ViewLogin, ViewRegister, ViewForgot, ViewVerify, ViewReset:
		return true
	}
	return false
}

type ModalState struct {
	IsOpen bool
	View   View
	Extra  map[string]any
}

// Modal tracks the authentication dialog. Closing keeps the view so a reopen
// without an explicit view lands where the user left.
type Modal struct {
	mu    sync.RWMutex
	state ModalState
}

func NewModal() *Modal {
	return &Modal{state: ModalState{View: ViewLogin}}
}

func (m *Modal) State() ModalState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := m.state
	if st.Extra != nil {
		extra := make(map[string]any, len(st.Extra))
		for k, v := range st.Extra {
			extra[k] = v
		}
		st.Extra = extra
	}
	return st
}

// Open shows the dialog on view; an empty or unknown view means LOGIN.
func (m *Modal) Open(view View) {
	m.OpenWith(view, nil)
}

func (m *Modal) OpenWith(view View, extra map[string]any) {
	if !view.Valid() {
		view = ViewLogin
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = ModalState{IsOpen: true, View: view, Extra: extra}
}

func (m *Modal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.IsOpen = false
}

// SwitchView changes the step without touching visibility. Unknown views are ignored.
func (m *Modal) SwitchView(view View) {
	if !view.Valid() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.View = view
}
