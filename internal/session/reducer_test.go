package session

import (
	"testing"

	"visa_referral/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestReduce(t *testing.T) {
	user := &model.User{ID: "1", Email: "john@example.com"}
	authed := State{User: user, Token: "t", RefreshToken: "r", IsAuthenticated: true}

	tests := []struct {
		name   string
		state  State
		action Action
		want   State
	}{
		{
			name:   "login start clears error",
			state:  State{Error: "boom"},
			action: Action{Type: LoginStart},
			want:   State{IsLoading: true},
		},
		{
			name:   "register start",
			state:  State{},
			action: Action{Type: RegisterStart},
			want:   State{IsLoading: true},
		},
		{
			name:   "login success",
			state:  State{IsLoading: true, Error: "old"},
			action: Action{Type: LoginSuccess, User: user, Token: "t", RefreshToken: "r"},
			want:   authed,
		},
		{
			name:   "register success",
			state:  State{IsLoading: true},
			action: Action{Type: RegisterSuccess, User: user, Token: "t", RefreshToken: "r"},
			want:   authed,
		},
		{
			name:   "login error clears session",
			state:  authed,
			action: Action{Type: LoginError, Error: "Invalid email or password"},
			want:   State{Error: "Invalid email or password"},
		},
		{
			name:   "register error",
			state:  State{IsLoading: true},
			action: Action{Type: RegisterError, Error: "taken"},
			want:   State{Error: "taken"},
		},
		{
			name:   "logout leaves loading flag alone",
			state:  State{User: user, Token: "t", IsAuthenticated: true, IsLoading: true, Error: "x"},
			action: Action{Type: Logout},
			want:   State{IsLoading: true},
		},
		{
			name:   "set user only replaces user",
			state:  State{Token: "t", IsAuthenticated: true},
			action: Action{Type: SetUser, User: user},
			want:   State{User: user, Token: "t", IsAuthenticated: true},
		},
		{
			name:   "clear error",
			state:  State{Error: "x", IsLoading: true},
			action: Action{Type: ClearError},
			want:   State{IsLoading: true},
		},
		{
			name:   "init complete",
			state:  InitialState(),
			action: Action{Type: InitComplete},
			want:   State{},
		},
		{
			name:   "unknown action is ignored",
			state:  authed,
			action: Action{Type: "NOPE"},
			want:   authed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reduce(tt.state, tt.action))
		})
	}
}

func TestInitialState(t *testing.T) {
	s := InitialState()
	assert.True(t, s.IsLoading)
	assert.False(t, s.IsAuthenticated)
	assert.Nil(t, s.User)
}

func TestStore_SubscribeAndGenerations(t *testing.T) {
	s := NewStore()
	var seen []State
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st) })

	gen := s.Begin()
	assert.True(t, s.DispatchFor(gen, Action{Type: LoginStart}))
	s.Dispatch(Action{Type: Logout})
	assert.False(t, s.Current(gen))
	assert.False(t, s.DispatchFor(gen, Action{Type: LoginSuccess, Token: "late"}))
	assert.Empty(t, s.State().Token)

	unsubscribe()
	s.Dispatch(Action{Type: InitComplete})
	assert.Len(t, seen, 2)
}
