package presentation

import (
	"time"

	"github.com/zjrosen/multidispatch/internal/dispatch"
	"github.com/zjrosen/multidispatch/internal/propcheck"
)

// OperationDTO represents an operation and its clauses for presentation
type OperationDTO struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	Clauses     []ClauseDTO `json:"clauses"`
}

// ClauseDTO represents one clause in dispatch order
type ClauseDTO struct {
	ID          string   `json:"id"`
	Index       int      `json:"index"`
	Arity       int      `json:"arity"`
	Patterns    []string `json:"patterns"`
	Signature   string   `json:"signature"` // e.g. (x, x)
	Variables   []string `json:"variables,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ResultDTO is the outcome of one invocation.
type ResultDTO struct {
	Operation string `json:"operation"`
	Args      string `json:"args"`
	Result    any    `json:"result,omitempty"`
	Display   string `json:"display,omitempty"` // 'a' rather than 97 for runes
	Type      string `json:"type,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CheckDTO is the outcome of a property check run.
type CheckDTO struct {
	Operation  string  `json:"operation"`
	Passed     bool    `json:"passed"`
	Count      int     `json:"count"`
	Seed       int     `json:"seed"`
	DurationMS float64 `json:"duration_ms"`
	Failure    string  `json:"failure,omitempty"`
}

// FromClause converts a registered clause to a DTO.
func FromClause(c *dispatch.Clause) ClauseDTO {
	patterns := make([]string, len(c.Key))
	for i, p := range c.Key {
		patterns[i] = p.String()
	}

	return ClauseDTO{
		ID:          c.ID,
		Index:       c.Index,
		Arity:       c.Arity(),
		Patterns:    patterns,
		Signature:   c.Key.String(),
		Variables:   c.Key.Variables(),
		Description: c.Description,
	}
}

// FromSnapshot converts an operation snapshot to a DTO
func FromSnapshot(snap dispatch.Snapshot) OperationDTO {
	clauses := make([]ClauseDTO, len(snap.Clauses))
	for i, c := range snap.Clauses {
		clauses[i] = FromClause(c)
	}

	return OperationDTO{
		Name:        snap.Operation.Name,
		Description: snap.Operation.Description,
		CreatedAt:   snap.Operation.CreatedAt,
		Clauses:     clauses,
	}
}

// FromRegistry converts every operation in reg, sorted by name. A non-empty
// filter limits the output to that operation.
func FromRegistry(reg *dispatch.Registry, filter string) []OperationDTO {
	dtos := make([]OperationDTO, 0)
	for _, op := range reg.Operations() {
		if filter != "" && op.Name != filter {
			continue
		}
		snap, ok := reg.Lookup(op.Name)
		if !ok {
			continue
		}
		dtos = append(dtos, FromSnapshot(snap))
	}
	return dtos
}

// FromResult builds a ResultDTO from an invocation outcome.
func FromResult(op string, args []any, result any, err error) ResultDTO {
	dto := ResultDTO{Operation: op, Args: dispatch.FormatArgs(args)}
	if err != nil {
		dto.Error = err.Error()
		return dto
	}
	dto.Result = result
	dto.Display = dispatch.FormatValue(result)
	dto.Type = typeName(result)
	return dto
}

// FromReport builds a CheckDTO from a check run.
func FromReport(op string, report propcheck.Report, err error) CheckDTO {
	dto := CheckDTO{
		Operation:  op,
		Passed:     err == nil,
		Count:      report.Count,
		Seed:       report.Seed,
		DurationMS: float64(report.Duration.Microseconds()) / 1000,
	}
	if err != nil {
		dto.Failure = err.Error()
	}
	return dto
}
