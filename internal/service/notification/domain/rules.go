package domain

import (
	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
)

// RuleSet decides which order events produce a notification. Rules are
// CEL expressions over the event fields; an event is notified only when
// every rule evaluates to true. An empty set notifies everything.
type RuleSet struct {
	programs []cel.Program
	sources  []string
}

// NewRuleSet compiles the given CEL expressions. Each expression must
// yield a bool over the variables status, quantity and userId.
func NewRuleSet(exprs []string) (*RuleSet, error) {
	env, err := cel.NewEnv(
		cel.Variable("status", cel.StringType),
		cel.Variable("quantity", cel.IntType),
		cel.Variable("userId", cel.IntType),
	)
	if err != nil {
		return nil, errors.Wrap(err, "build rule environment")
	}

	rs := &RuleSet{}
	for _, expr := range exprs {
		ast, issues := env.Compile(expr)
		if issues != nil && issues.Err() != nil {
			return nil, errors.Wrapf(issues.Err(), "compile rule %q", expr)
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, errors.Errorf("rule %q does not evaluate to a bool", expr)
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, errors.Wrapf(err, "build program for rule %q", expr)
		}
		rs.programs = append(rs.programs, prg)
		rs.sources = append(rs.sources, expr)
	}
	return rs, nil
}

// Matches reports whether every rule accepts the event.
func (rs *RuleSet) Matches(event *OrderCreatedEvent) (bool, error) {
	vars := map[string]any{
		"status":   event.Status,
		"quantity": event.Quantity,
		"userId":   event.UserID,
	}
	for i, prg := range rs.programs {
		out, _, err := prg.Eval(vars)
		if err != nil {
			return false, errors.Wrapf(err, "evaluate rule %q", rs.sources[i])
		}
		match, ok := out.Value().(bool)
		if !ok {
			return false, errors.Errorf("rule %q produced a non-bool result", rs.sources[i])
		}
		if !match {
			return false, nil
		}
	}
	return true, nil
}

// Len reports the number of compiled rules.
func (rs *RuleSet) Len() int { return len(rs.programs) }
