package settings

import (
	"errors"
	"testing"

	"maestro/internal/merrors"
)

type fakeMission map[string]any

func (f fakeMission) Get(key string) (any, bool) { v, ok := f[key]; return v, ok }

type fakeUser map[string]any

func (f fakeUser) Get(path string) (any, bool) { v, ok := f[path]; return v, ok }

func TestResolverLayering(t *testing.T) {
	r := New()
	r.Register(Spec{Name: "widgets", MissionKey: "widgets", UserPath: "widgets", Default: 1, Kind: KindInt})

	if v, err := r.Get("widgets", nil, nil); err != nil || v != 1 {
		t.Fatalf("expected default 1, got %v err %v", v, err)
	}

	user := fakeUser{"widgets": 2}
	if v, err := r.Get("widgets", nil, user); err != nil || v != 2 {
		t.Fatalf("expected user override 2, got %v err %v", v, err)
	}

	mission := fakeMission{"widgets": 3}
	if v, err := r.Get("widgets", mission, user); err != nil || v != 3 {
		t.Fatalf("expected mission override 3 (highest precedence), got %v err %v", v, err)
	}
}

func TestResolverRequiredMissing(t *testing.T) {
	r := New()
	r.Register(Spec{Name: "api_key", EnvVar: "MAESTRO_TEST_UNSET_KEY", Kind: KindString, Required: true})

	_, err := r.Get("api_key", nil, nil)
	if err == nil {
		t.Fatal("expected ConfigurationRequired error")
	}
	if !errors.Is(err, merrors.New(merrors.ConfigurationRequired, "")) {
		t.Errorf("expected ConfigurationRequired kind, got %v", err)
	}
}

func TestCoerceBool(t *testing.T) {
	spec := Spec{Name: "flag", Kind: KindBool}
	for in, want := range map[string]bool{"true": true, "1": true, "yes": true, "on": true, "false": false, "0": false, "no": false} {
		got, err := coerce(spec, in)
		if err != nil {
			t.Fatalf("coerce(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("coerce(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := coerce(spec, "maybe"); err == nil {
		t.Error("expected error for unparseable bool")
	}
}

func TestCoerceIntStrict(t *testing.T) {
	spec := Spec{Name: "n", Kind: KindInt}
	if _, err := coerce(spec, "not-a-number"); err == nil {
		t.Error("expected strict int parse to fail on non-numeric string")
	}
	got, err := coerce(spec, "42")
	if err != nil || got != 42 {
		t.Errorf("coerce(\"42\") = %v, %v; want 42, nil", got, err)
	}
}
