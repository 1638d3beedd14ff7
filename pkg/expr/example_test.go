package expr_test

import (
	"errors"
	"fmt"

	"github.com/matzehuels/flownet/pkg/expr"
)

func ExampleEvaluate() {
	v, _ := expr.Evaluate("base * 2 + slack", map[string]float64{"base": 4, "slack": 1})
	fmt.Println(v)
	// Output: 9
}

func ExampleParseError() {
	_, err := expr.Evaluate("10 / (lanes - 2)", map[string]float64{"lanes": 2})

	var perr *expr.ParseError
	if errors.As(err, &perr) {
		fmt.Println(perr.Kind, perr.Pos)
	}
	fmt.Println(err)
	// Output:
	// syntax error 3
	// syntax error at offset 3: division by zero
}
