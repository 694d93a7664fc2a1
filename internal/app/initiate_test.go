package app

import (
	"reflect"
	"testing"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
)

func TestSplitRules(t *testing.T) {
	got := splitRules([]string{
		"admin, *, *",
		" auditor ,otp.policy, read",
		"broken, otp.policy",
		"empty, , read",
	}, 3)

	want := [][]string{
		{"admin", "*", "*"},
		{"auditor", "otp.policy", "read"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitRules() = %v, want %v", got, want)
	}
}

func TestRBACModel(t *testing.T) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		t.Fatalf("enforcer: %v", err)
	}
	if _, err := e.AddPolicies(splitRules([]string{"admin, *, *", "auditor, otp.records, read"}, 3)); err != nil {
		t.Fatalf("AddPolicies() error = %v", err)
	}
	if _, err := e.AddGroupingPolicies(splitRules([]string{"ops, auditor"}, 2)); err != nil {
		t.Fatalf("AddGroupingPolicies() error = %v", err)
	}

	tests := []struct {
		sub, obj, act string
		want          bool
	}{
		{"admin", "otp.policy", "write", true},
		{"auditor", "otp.records", "read", true},
		{"auditor", "otp.records", "delete", false},
		{"ops", "otp.records", "read", true},
		{"user", "otp.policy", "read", false},
	}
	for _, tt := range tests {
		ok, err := e.Enforce(tt.sub, tt.obj, tt.act)
		if err != nil || ok != tt.want {
			t.Fatalf("Enforce(%s, %s, %s) = %v, %v; want %v", tt.sub, tt.obj, tt.act, ok, err, tt.want)
		}
	}
}
