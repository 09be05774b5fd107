package authclient

import "testing"

func TestReducePendingFulfilledRejected(t *testing.T) {
	s := State{Error: "old"}

	s = Reduce(s, Pending(OpLogin))
	if !s.Loading || s.Error != "" {
		t.Fatalf("pending: %+v", s)
	}

	u := &User{ID: "u1", Email: "a@example.com"}
	s = Reduce(s, SignedIn(OpLogin, u, "tok"))
	if s.Loading || s.User != u || s.Token != "tok" {
		t.Fatalf("fulfilled: %+v", s)
	}

	s = Reduce(s, Pending(OpForgotPassword))
	s = Reduce(s, Rejected(OpForgotPassword, "boom"))
	if s.Loading || s.Error != "boom" || s.Token != "tok" {
		t.Fatalf("rejected: %+v", s)
	}
}

func TestReduceGetMeRejectedClearsIdentity(t *testing.T) {
	s := State{User: &User{ID: "u1"}, Token: "tok"}
	s = Reduce(s, Rejected(OpGetMe, "unauthorized"))
	if s.User != nil || s.Token != "" {
		t.Fatalf("identity kept after unauthorized getMe: %+v", s)
	}
}

func TestReduceResetFlags(t *testing.T) {
	var s State
	s = Reduce(s, Fulfilled(OpForgotPassword))
	s = Reduce(s, Fulfilled(OpValidateOTP))
	s = Reduce(s, Fulfilled(OpResetPassword))
	if !s.OTPSent || !s.OTPValidated || !s.ResetSuccess {
		t.Fatalf("flags not set: %+v", s)
	}
	s = Reduce(s, ClearResetFlags())
	if s.OTPSent || s.OTPValidated || s.ResetSuccess {
		t.Fatalf("flags not cleared: %+v", s)
	}
}

func TestReduceLocalActions(t *testing.T) {
	u := &User{ID: "u1"}
	s := Reduce(State{}, SetUser(u))
	if s.User != u {
		t.Fatalf("SetUser: %+v", s)
	}
	s.Token = "tok"
	s = Reduce(s, Logout())
	if s.User != nil || s.Token != "" || s.Authenticated() {
		t.Fatalf("Logout: %+v", s)
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	in := State{Token: "tok"}
	_ = Reduce(in, Logout())
	if in.Token != "tok" {
		t.Fatalf("input mutated")
	}
}
