package session

import "visa_referral/internal/model"

// State is the client's view of the authenticated session.
type State struct {
	User            *model.User `json:"user"`
	Token           string      `json:"token"`
	RefreshToken    string      `json:"refreshToken"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	IsLoading       bool        `json:"isLoading"`
	Error           string      `json:"error,omitempty"`
}

// InitialState is loading until rehydration finishes.
func InitialState() State {
	return State{IsLoading: true}
}

type ActionType string

const (
	LoginStart      ActionType = "LOGIN_START"
	LoginSuccess    ActionType = "LOGIN_SUCCESS"
	LoginError      ActionType = "LOGIN_ERROR"
	RegisterStart   ActionType = "REGISTER_START"
	RegisterSuccess ActionType = "REGISTER_SUCCESS"
	RegisterError   ActionType = "REGISTER_ERROR"
	Logout          ActionType = "LOGOUT"
	SetUser         ActionType = "SET_USER"
	ClearError      ActionType = "CLEAR_ERROR"
	InitComplete    ActionType = "INIT_COMPLETE"
)

// Action is a state transition request with its payload.
type Action struct {
	Type         ActionType
	User         *model.User
	Token        string
	RefreshToken string
	Error        string
}

// Reduce applies an action. It never blocks and has no side effects.
func Reduce(s State, a Action) State {
	switch a.Type {
	case LoginStart, RegisterStart:
		s.IsLoading = true
		s.Error = ""
	case LoginSuccess, RegisterSuccess:
		s.User = a.User
		s.Token = a.Token
		s.RefreshToken = a.RefreshToken
		s.IsAuthenticated = true
		s.IsLoading = false
		s.Error = ""
	case LoginError, RegisterError:
		s.User = nil
		s.Token = ""
		s.RefreshToken = ""
		s.IsAuthenticated = false
		s.IsLoading = false
		s.Error = a.Error
	case Logout:
		s.User = nil
		s.Token = ""
		s.RefreshToken = ""
		s.IsAuthenticated = false
		s.Error = ""
	case SetUser:
		s.User = a.User
	case ClearError:
		s.Error = ""
	case InitComplete:
		s.IsLoading = false
	}
	return s
}
