package codec

import (
	"context"
	"fmt"

	"github.com/itchyny/gojq"
)

// Query runs a jq expression over a generic JSON value and returns its
// single result. The expression cannot read the process environment.
func Query(ctx context.Context, v any, expression string) (any, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("jq parse error in %q: %w", expression, err)
	}
	code, err := gojq.Compile(query,
		gojq.WithEnvironLoader(func() []string { return nil }),
	)
	if err != nil {
		return nil, fmt.Errorf("jq compile error in %q: %w", expression, err)
	}

	iter := code.RunWithContext(ctx, v)
	var results []any
	for {
		val, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := val.(error); isErr {
			return nil, fmt.Errorf("jq evaluation failed for %q: %w", expression, err)
		}
		results = append(results, val)
	}

	if len(results) != 1 {
		return nil, fmt.Errorf("jq query %q produced %d results, expected exactly one doc", expression, len(results))
	}
	return results[0], nil
}
