package member

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/invoke"
	"github.com/McLeodMoores/xl4j-sub002/typedesc"
)

type account struct {
	Owner   string
	Balance float64
	secret  int
}

func newAccount(owner string) *account { return &account{Owner: owner} }

func (a *account) Deposit(amount float64) float64 {
	a.Balance += amount
	return a.Balance
}

func (a *account) Withdraw(amount float64) (float64, error) {
	if amount > a.Balance {
		return a.Balance, fmt.Errorf("insufficient funds")
	}
	a.Balance -= amount
	return a.Balance, nil
}

func (a account) Describe() string { return a.Owner }

type greeter interface {
	Greet(name string) string
}

type english struct{}

func (english) Greet(name string) string { return "hello " + name }

func TestFunc(t *testing.T) {
	m, err := Func("Join", func(sep string, parts ...string) string {
		return strings.Join(parts, sep)
	})
	if err != nil {
		t.Fatalf("Func: %v", err)
	}
	if !m.Variadic || !m.Static || m.Kind != invoke.KindFunction {
		t.Fatalf("unexpected member %+v", m)
	}
	if _, ok := m.Params[1].(typedesc.ArrayOf); !ok {
		t.Fatalf("variadic tail should be ArrayOf, got %T", m.Params[1])
	}
	out, err := m.Call(nil, []any{"-", []string{"a", "b"}})
	if err != nil || out != "a-b" {
		t.Fatalf("Call = %v, %v", out, err)
	}
}

func TestFunc_Results(t *testing.T) {
	boom := stderrors.New("boom")
	tests := []struct {
		name    string
		fn      any
		want    any
		wantErr error
		result  bool
	}{
		{"none", func() {}, nil, nil, false},
		{"value", func() int { return 1 }, 1, nil, true},
		{"error only", func() error { return boom }, nil, boom, false},
		{"value and error", func() (int, error) { return 0, boom }, nil, boom, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Func(tt.name, tt.fn)
			if err != nil {
				t.Fatalf("Func: %v", err)
			}
			if (m.Result != nil) != tt.result {
				t.Fatalf("Result = %v", m.Result)
			}
			got, err := m.Call(nil, nil)
			if !stderrors.Is(err, tt.wantErr) || got != tt.want {
				t.Fatalf("Call = %v, %v", got, err)
			}
		})
	}
}

func TestFunc_Invalid(t *testing.T) {
	if _, err := Func("x", 42); err == nil {
		t.Error("non-function should fail")
	}
	if _, err := Func("", func() {}); err == nil {
		t.Error("empty name should fail")
	}
	if _, err := Func("x", func() (int, int) { return 0, 0 }); err == nil {
		t.Error("two value results should fail")
	}
}

func TestFunc_NilArgument(t *testing.T) {
	m := MustFunc("Len", func(xs []int) int { return len(xs) })
	got, err := m.Call(nil, []any{nil})
	if err != nil || got != 0 {
		t.Fatalf("Call = %v, %v", got, err)
	}
}

func TestType(t *testing.T) {
	e, err := Type[account]("Account",
		Constructor(newAccount),
		Method("Deposit", func(a *account, amount int) float64 { return a.Deposit(float64(amount)) }),
		Static("Bank", func() string { return "ACME" }),
		Constant("Currency", "EUR"),
	)
	if err != nil {
		t.Fatalf("Type: %v", err)
	}

	if diff := cmp.Diff([]string{"Deposit", "Describe", "Withdraw"}, sortedKeys(e.Methods)); diff != "" {
		t.Errorf("methods mismatch (-want +got):\n%s", diff)
	}
	if got := len(e.Method("Deposit")); got != 2 {
		t.Errorf("Deposit overloads = %d, want 2", got)
	}
	if _, ok := e.Field("secret"); ok {
		t.Error("unexported field exposed")
	}
	if len(e.Constructors) != 1 || e.Constructors[0].Kind != invoke.KindConstructor {
		t.Fatalf("constructors = %v", e.Constructors)
	}

	acct, err := e.Constructors[0].Call(nil, []any{"ann"})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if _, err := e.Method("deposit")[0].Call(acct, []any{10.0}); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if _, err := e.Method("Withdraw")[0].Call(acct, []any{50.0}); err == nil {
		t.Error("overdraw should fail")
	}
	owner, _ := e.Field("Owner")
	if got, _ := owner.Call(acct, nil); got != "ann" {
		t.Errorf("Owner = %v", got)
	}
	balance, _ := e.Field("balance")
	if got, _ := balance.Call(acct, nil); got != 10.0 {
		t.Errorf("Balance = %v", got)
	}
	if got, _ := e.Method("Describe")[0].Call(*acct.(*account), nil); got != "ann" {
		t.Errorf("Describe on value receiver = %v", got)
	}
	if got, _ := e.Static("Bank")[0].Call(nil, nil); got != "ACME" {
		t.Errorf("Bank = %v", got)
	}
	if c, ok := e.StaticField("Currency"); !ok || !c.Static {
		t.Error("Currency constant missing")
	}

	_, err = e.Method("Deposit")[0].Call("not an account", []any{1.0})
	var te *errors.Error
	if !stderrors.As(err, &te) || te.Kind != errors.KindTypeMismatch {
		t.Errorf("wrong receiver err = %v", err)
	}
}

func TestType_BadConstructor(t *testing.T) {
	if _, err := Type[account]("Account", Constructor(func() string { return "" })); err == nil {
		t.Error("constructor returning the wrong type should fail")
	}
	if _, err := Type[account]("Account", Method("X", func(s string) {})); err == nil {
		t.Error("method without receiver should fail")
	}
}

func TestType_Interface(t *testing.T) {
	e := MustType[greeter]("Greeter")
	got, err := e.Method("Greet")[0].Call(english{}, []any{"bob"})
	if err != nil || got != "hello bob" {
		t.Fatalf("Greet = %v, %v", got, err)
	}
}

func TestCatalog(t *testing.T) {
	c := NewCatalog()
	acct := MustType[account]("Account")
	if err := c.Add(acct); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Add(MustType[account]("Other")); !stderrors.Is(err, errors.ErrConflict) {
		t.Errorf("same Go type twice: err = %v", err)
	}
	if err := c.Add(MustType[greeter]("Account")); !stderrors.Is(err, errors.ErrConflict) {
		t.Errorf("same name twice: err = %v", err)
	}
	if err := c.Add(MustType[greeter]("Greeter")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if e, ok := c.Lookup("account"); !ok || e != acct {
		t.Error("case-insensitive lookup failed")
	}
	if e, ok := c.ForValue(&account{}); !ok || e != acct {
		t.Error("ForValue(*account) failed")
	}
	if e, ok := c.ForValue(english{}); !ok || e.Name != "Greeter" {
		t.Error("ForValue should match interface entries")
	}
	if diff := cmp.Diff([]string{"Account", "Greeter"}, c.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	c.Freeze()
	if err := c.Add(MustType[english]("English")); err == nil {
		t.Error("Add after Freeze should fail")
	}
}
