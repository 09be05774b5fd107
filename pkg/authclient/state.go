// Package authclient mirrors the auth API's responses into a small state
// container that survives restarts through a Storage backend.
package authclient

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName,omitempty"`
	Picture      string    `json:"picture,omitempty"`
	AuthProvider string    `json:"authProvider"`
	CreatedAt    time.Time `json:"createdAt"`
}

type State struct {
	User         *User
	Token        string
	Loading      bool
	Error        string
	ResetSuccess bool
	OTPSent      bool
	OTPValidated bool
}

// Authenticated reports whether a session token is held.
func (s State) Authenticated() bool { return s.Token != "" }

type Op string

const (
	OpRegister       Op = "register"
	OpLogin          Op = "login"
	OpGoogleSignIn   Op = "googleSignIn"
	OpGetMe          Op = "getMe"
	OpForgotPassword Op = "forgotPassword"
	OpValidateOTP    Op = "validateOTP"
	OpResetPassword  Op = "resetPassword"

	// local actions
	OpSetUser         Op = "setUser"
	OpLogout          Op = "logout"
	OpClearResetFlags Op = "clearResetFlags"
)

type Phase int

const (
	PhaseNone Phase = iota
	PhasePending
	PhaseFulfilled
	PhaseRejected
)

type Action struct {
	Op    Op
	Phase Phase
	User  *User
	Token string
	Error string
}

func Pending(op Op) Action { return Action{Op: op, Phase: PhasePending} }

func Rejected(op Op, message string) Action {
	return Action{Op: op, Phase: PhaseRejected, Error: message}
}

// SignedIn is the fulfilled action of register, login and Google sign-in.
func SignedIn(op Op, user *User, token string) Action {
	return Action{Op: op, Phase: PhaseFulfilled, User: user, Token: token}
}

func Fulfilled(op Op) Action { return Action{Op: op, Phase: PhaseFulfilled} }

func MeLoaded(user *User) Action { return Action{Op: OpGetMe, Phase: PhaseFulfilled, User: user} }

func SetUser(user *User) Action { return Action{Op: OpSetUser, User: user} }

func Logout() Action { return Action{Op: OpLogout} }

func ClearResetFlags() Action { return Action{Op: OpClearResetFlags} }

func signsIn(op Op) bool {
	return op == OpRegister || op == OpLogin || op == OpGoogleSignIn
}

// Reduce returns the state after a. It never mutates s.
func Reduce(s State, a Action) State {
	switch a.Op {
	case OpSetUser:
		s.User = a.User
		return s
	case OpLogout:
		s.User = nil
		s.Token = ""
		s.Error = ""
		s.Loading = false
		return s
	case OpClearResetFlags:
		s.ResetSuccess = false
		s.OTPSent = false
		s.OTPValidated = false
		return s
	}

	switch a.Phase {
	case PhasePending:
		s.Loading = true
		s.Error = ""
	case PhaseRejected:
		s.Loading = false
		s.Error = a.Error
		if a.Op == OpGetMe {
			s.User = nil
			s.Token = ""
		}
	case PhaseFulfilled:
		s.Loading = false
		switch {
		case signsIn(a.Op):
			s.User = a.User
			s.Token = a.Token
		case a.Op == OpGetMe:
			s.User = a.User
		case a.Op == OpForgotPassword:
			s.OTPSent = true
		case a.Op == OpValidateOTP:
			s.OTPValidated = true
		case a.Op == OpResetPassword:
			s.ResetSuccess = true
		}
	}
	return s
}
