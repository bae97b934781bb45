package mask

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(DefaultPolicy())
}

func TestMask_ScalarsPassThrough(t *testing.T) {
	e := newTestEngine(t)
	for _, v := range []Value{Null(), Bool(true), Int(7), Float(1.5), String("hello")} {
		assert.True(t, v.Equal(e.Mask(v)), "%s should pass through", v.Kind())
	}
}

func TestMask_SensitiveNumberBecomesPlaceholder(t *testing.T) {
	e := newTestEngine(t)
	out := e.Mask(Object(F("pin", Int(1234))))

	got, ok := out.Get("pin")
	require.True(t, ok)
	assert.Equal(t, String("***"), got)
}

func TestMask_SensitiveStrings(t *testing.T) {
	e := newTestEngine(t)
	out := e.Mask(Object(
		F("email", String("user@example.com")),
		F("cpf", String("123.456.789-00")),
		F("pwd", String("abc")),
		F("name", String("Maria")),
	))

	assert.Equal(t, `{"email":"use***com","cpf":"123***-00","pwd":"***","name":"Maria"}`, mustJSON(t, out))
}

func TestMask_ArrayOfObjects(t *testing.T) {
	e := newTestEngine(t)
	in := Object(F("users", Array(
		Object(F("name", String("Ana")), F("password", String("password123"))),
		Object(F("name", String("Bia")), F("password", String("hunter2"))),
	)))

	out := e.Mask(in)
	users, ok := out.Get("users")
	require.True(t, ok)
	require.Equal(t, 2, users.Len())

	first := users.Items()[0]
	name, _ := first.Get("name")
	pw, _ := first.Get("password")
	assert.Equal(t, String("Ana"), name)
	assert.Equal(t, String("pas***123"), pw)

	second, _ := users.Items()[1].Get("password")
	assert.Equal(t, String("hun***er2"), second)
}

func TestMask_SensitiveSubtreeCollapses(t *testing.T) {
	e := newTestEngine(t)
	out := e.Mask(Object(
		F("secret", Object(F("inner", String("value")), F("deeper", Array(Int(1))))),
		F("tokens", Array(String("a"), String("b"))),
		F("pinned", Bool(true)),
		F("phone", Null()),
	))

	assert.Equal(t, `{"secret":"***","tokens":"***","pinned":"***","phone":null}`, mustJSON(t, out))
}

func TestMask_Examples(t *testing.T) {
	passwordOnly := Policy{CustomFields: []string{"password"}}

	tests := []struct {
		name   string
		policy Policy
		in     Value
		want   string
	}{
		{
			name:   "top-level array",
			policy: DefaultPolicy(),
			in: Array(
				Object(F("name", String("John")), F("password", String("pass1"))),
				Object(F("name", String("Jane")), F("password", String("pass2"))),
			),
			want: `[{"name":"John","password":"pas***"},{"name":"Jane","password":"pas***"}]`,
		},
		{
			name:   "document number",
			policy: DefaultPolicy(),
			in:     Object(F("cpf", String("123.456.789-00")), F("name", String("John Doe"))),
			want:   `{"cpf":"123***-00","name":"John Doe"}`,
		},
		{
			name:   "custom fields only",
			policy: passwordOnly,
			in: Object(F("credentials", Object(
				F("password", String("x")),
				F("nested", Object(F("a", Int(1)))),
			))),
			want: `{"credentials":{"password":"***","nested":{"a":1}}}`,
		},
		{
			name:   "custom fields only leave default names alone",
			policy: passwordOnly,
			in:     Object(F("token", String("abcdef")), F("password", String("abcdef"))),
			want:   `{"token":"abcdef","password":"abc***"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewEngine(tt.policy).Mask(tt.in)
			assert.Equal(t, tt.want, mustJSON(t, out))
		})
	}
}

func TestMask_PreservesKeysAndOrder(t *testing.T) {
	e := newTestEngine(t)
	in := Object(
		F("zeta", Int(1)),
		F("password", String("s3cr3t!!")),
		F("alpha", Object(F("token", String("tok")), F("b", Int(2)))),
	)

	out := e.Mask(in)
	assert.Equal(t, in.Keys(), out.Keys())

	inner, _ := out.Get("alpha")
	assert.Equal(t, []string{"token", "b"}, inner.Keys())
}

func TestMask_DoesNotMutateInput(t *testing.T) {
	e := newTestEngine(t)
	in := Object(
		F("password", String("hunter22")),
		F("nested", Object(F("apiKey", String("k-123456")))),
		F("list", Array(Object(F("email", String("a@b.com"))))),
	)
	before := mustJSON(t, in)

	_ = e.Mask(in)
	assert.Equal(t, before, mustJSON(t, in))
}

func TestMask_IdentityOnNonSensitiveData(t *testing.T) {
	e := newTestEngine(t)
	in := Object(
		F("id", Int(42)),
		F("status", String("ok")),
		F("items", Array(Object(F("count", Float(2.5))), Null(), Bool(false))),
		F("at", Timestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))),
	)

	assert.True(t, in.Equal(e.Mask(in)))
}

func TestMask_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	in := Object(
		F("password", String("correct horse battery")),
		F("user", Object(F("email", String("someone@example.org")), F("pin", Int(9999)))),
	)

	once := e.Mask(in)
	assert.True(t, once.Equal(e.Mask(once)))
}

func TestMask_ErrorsAreFlattened(t *testing.T) {
	e := newTestEngine(t)
	in := Object(
		F("failure", Error(ErrorInfo{Message: "boom", Name: "IOError", Stack: "at main"})),
		F("secret", Error(ErrorInfo{Message: "hidden"})),
	)

	assert.Equal(t,
		`{"failure":{"error":"boom","name":"IOError","stack":"at main"},"secret":"***"}`,
		mustJSON(t, e.Mask(in)))
}

func TestMask_TimestampPassThrough(t *testing.T) {
	e := newTestEngine(t)
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	out := e.Mask(Object(F("createdAt", Timestamp(ts))))
	got, _ := out.Get("createdAt")
	assert.Equal(t, KindTimestamp, got.Kind())
	assert.True(t, ts.Equal(got.Time()))
}

func TestMask_DeepNestingUsesNoRecursion(t *testing.T) {
	e := newTestEngine(t)
	v := Object(F("password", String("deep-secret")))
	for i := 0; i < 100000; i++ {
		v = Object(F("n", v))
	}

	out := e.Mask(v)
	for i := 0; i < 100000; i++ {
		next, ok := out.Get("n")
		require.True(t, ok)
		out = next
	}
	pw, _ := out.Get("password")
	assert.Equal(t, String("dee***ret"), pw)
}

func TestMaskAny(t *testing.T) {
	e := newTestEngine(t)
	type account struct {
		Email    string   `json:"email"`
		Roles    []string `json:"roles"`
		Password string   `json:"password"`
		Internal string   `json:"-"`
	}

	out, err := e.MaskAny(map[string]any{
		"account": account{Email: "user@example.com", Roles: []string{"admin"}, Password: "hunter22", Internal: "x"},
		"err":     errors.New("denied"),
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"account":{"email":"use***com","roles":["admin"],"password":"hun***r22"},"err":{"error":"denied","name":"*errors.errorString","stack":""}}`,
		mustJSON(t, out))
}

func TestMaskAny_RespectsMaxDepth(t *testing.T) {
	p := DefaultPolicy()
	p.MaxDepth = 2
	e := NewEngine(p)

	_, err := e.MaskAny(map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}})
	assert.ErrorIs(t, err, ErrMaxDepth)
}

func mustJSON(t *testing.T, v Value) string {
	t.Helper()
	b, err := v.MarshalJSON()
	require.NoError(t, err)
	return string(b)
}
