// Package samples holds the demonstration exports loaded by xlbridge.
package samples

import (
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/McLeodMoores/xl4j-sub002/invoke"
	"github.com/McLeodMoores/xl4j-sub002/member"
	"github.com/McLeodMoores/xl4j-sub002/runtime"
)

// Math exports numeric helpers.
type Math struct{}

func (Math) Category() string { return "Math" }

// Hypot returns the length of the hypotenuse.
func (Math) Hypot(a, b float64) float64 { return math.Hypot(a, b) }

// Sum adds any number of values.
func (Math) Sum(xs ...float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}

// Factorial returns n! exactly.
func (Math) Factorial(n int) (*big.Int, error) {
	if n < 0 {
		return nil, errNegative
	}
	return new(big.Int).MulRange(1, int64(max(n, 1))), nil
}

// Transpose flips a grid.
func (Math) Transpose(grid [][]float64) [][]float64 {
	if len(grid) == 0 {
		return nil
	}
	out := make([][]float64, len(grid[0]))
	for c := range out {
		out[c] = make([]float64, len(grid))
		for r := range grid {
			if c < len(grid[r]) {
				out[c][r] = grid[r][c]
			}
		}
	}
	return out
}

type sampleError string

func (e sampleError) Error() string { return string(e) }

const errNegative = sampleError("negative argument")

// Counter is a mutable object reached through the reflective builtins.
type Counter struct {
	Label string
	Count int
}

// NewCounter creates a counter starting at zero.
func NewCounter(label string) *Counter { return &Counter{Label: label} }

// Increment adds by and returns the new count.
func (c *Counter) Increment(by int) int {
	c.Count += by
	return c.Count
}

// Reset sets the count back to zero.
func (c *Counter) Reset() { c.Count = 0 }

// Register adds the sample exports and types to rt.
func Register(rt *runtime.Runtime) error {
	if err := rt.RegisterProvider(Math{}); err != nil {
		return err
	}
	if err := rt.RegisterOverloads("Add", []any{
		func(a, b int) int { return a + b },
		func(a, b float64) float64 { return a + b },
		func(a, b string) string { return a + b },
	}, runtime.Category("Math"), runtime.Help("Adds numbers or concatenates text"), runtime.ThreadSafe()); err != nil {
		return err
	}
	if err := rt.RegisterFunc("Join", func(sep string, parts ...string) string {
		return strings.Join(parts, sep)
	}, runtime.Category("Text"), runtime.Args("separator", "parts")); err != nil {
		return err
	}
	if err := rt.RegisterFunc("Today", func() time.Time {
		return time.Now().UTC().Truncate(24 * time.Hour)
	}, runtime.Category("Date"), runtime.Volatile()); err != nil {
		return err
	}
	if err := rt.RegisterFunc("AddDays", func(t time.Time, days int) time.Time {
		return t.AddDate(0, 0, days)
	}, runtime.Category("Date"), runtime.Args("date", "days")); err != nil {
		return err
	}
	if err := rt.RegisterFunc("Words", strings.Fields,
		runtime.Category("Text"), runtime.Help("Splits text into a row of words")); err != nil {
		return err
	}
	if err := rt.RegisterFunc("NewCounter", NewCounter,
		runtime.Category("Objects"), runtime.Mode(invoke.ResultObject)); err != nil {
		return err
	}
	return rt.RegisterType(member.MustType[Counter]("Counter",
		member.Constructor(NewCounter),
		member.Constant("Step", 1),
	))
}
