package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModal_Transitions(t *testing.T) {
	m := NewModal()
	assert.Equal(t, ModalState{View: ViewLogin}, m.State())

	m.Open(ViewRegister)
	assert.Equal(t, ModalState{IsOpen: true, View: ViewRegister}, m.State())

	m.SwitchView(ViewForgot)
	assert.Equal(t, ViewForgot, m.State().View)
	assert.True(t, m.State().IsOpen)

	m.Close()
	st := m.State()
	assert.False(t, st.IsOpen)
	assert.Equal(t, ViewForgot, st.View)
}

func TestModal_OpenDefaultsToLogin(t *testing.T) {
	m := NewModal()
	m.Open("")
	assert.Equal(t, ViewLogin, m.State().View)

	m.Open("SIGNUP")
	assert.Equal(t, ViewLogin, m.State().View)
}

func TestModal_SwitchViewIgnoresUnknown(t *testing.T) {
	m := NewModal()
	m.Open(ViewVerify)
	m.SwitchView("SIGNUP")
	assert.Equal(t, ViewVerify, m.State().View)
}

func TestModal_ExtraIsCopied(t *testing.T) {
	m := NewModal()
	m.OpenWith(ViewLogin, map[string]any{"from": "reservation"})

	st := m.State()
	st.Extra["from"] = "changed"

	assert.Equal(t, "reservation", m.State().Extra["from"])
}
