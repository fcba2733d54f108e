package synthesis

import (
	"context"
	"fmt"

	"github.com/mrsinham/dicomschema/internal/sandbox"
	"github.com/mrsinham/dicomschema/internal/schema"
)

// State is the synthesis session's phase.
type State string

const (
	// StateIdle is the session before its first analysis.
	StateIdle State = "idle"
	// StateAnalyzing is an in-flight synthesis run. Callers enforce
	// single-flight per acquisition by not re-entering while analyzing.
	StateAnalyzing State = "analyzing"
	// StateEditing is a completed synthesis whose rows can be edited,
	// resolved and generated from.
	StateEditing State = "editing"
	// StateGenerating is an in-flight encoder run.
	StateGenerating State = "generating"
	// StateDone is a successful encoder run.
	StateDone State = "done"
	// StateError is a failed synthesis; terminal until re-analyzed.
	StateError State = "error"
)

// Session drives one acquisition's synthesis lifecycle:
//
//	Idle -> Analyzing -> Editing -> Generating -> Done
//	                  \-> Error          \-> Editing (encoder failure)
//
// Re-analyzing from any state discards in-progress edits and conflict
// resolutions. All row state is replaced wholesale on each transition,
// never mutated in place.
type Session struct {
	engine *Engine
	runner sandbox.Runner

	fields []schema.Field
	series []schema.Series
	fns    []schema.ValidationFunction
	order  []string

	state  State
	result Result
}

// NewSession creates a session for an acquisition. Series-level fields are
// synthesized alongside acquisition-level ones.
func NewSession(engine *Engine, runner sandbox.Runner, acq schema.Acquisition) *Session {
	fields := make([]schema.Field, 0, len(acq.AcquisitionFields)+len(acq.SeriesFields))
	fields = append(fields, acq.AcquisitionFields...)
	fields = append(fields, acq.SeriesFields...)

	order := make([]string, len(fields))
	for i, f := range fields {
		order[i] = f.Name
	}

	return &Session{
		engine: engine,
		runner: runner,
		fields: fields,
		series: acq.Series,
		fns:    acq.ValidationFunctions,
		order:  order,
		state:  StateIdle,
	}
}

// State returns the current phase.
func (s *Session) State() State { return s.state }

// Analyze runs synthesis and enters Editing. A run already in flight is an
// error; a field with unusable constraint parameters enters Error (terminal
// until re-analyzed); a cancelled context discards the run's result and
// leaves the session exactly as it was.
func (s *Session) Analyze(ctx context.Context) error {
	if s.state == StateAnalyzing || s.state == StateGenerating {
		return fmt.Errorf("synthesis already in flight (state %s)", s.state)
	}

	prev := s.state
	s.state = StateAnalyzing

	for _, f := range s.fields {
		if err := f.Rule.Validate(); err != nil {
			s.state = StateError
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}

	result := s.engine.Synthesize(s.fields, s.series, s.fns)

	if err := ctx.Err(); err != nil {
		// The session was closed while analyzing; drop the result.
		s.state = prev
		return err
	}

	s.result = result
	s.state = StateEditing
	return nil
}

// Rows returns a copy of the current rows.
func (s *Session) Rows() []Row {
	rows := make([]Row, len(s.result.Rows))
	for i, row := range s.result.Rows {
		copied := make(Row, len(row))
		for k, v := range row {
			copied[k] = v
		}
		rows[i] = copied
	}
	return rows
}

// Conflicts returns the conflicts detected by the last analysis.
func (s *Session) Conflicts() []Conflict { return s.result.Conflicts }

// Warnings returns the warnings from the last analysis plus any appended
// by later edits.
func (s *Session) Warnings() []string { return s.result.Warnings }

// ResolveConflict rewrites a field's column across all rows from the
// chosen source: SchemaChoice for the schema value, or a validation
// function's name for its asserted values. When the source supplies
// several values they cycle across rows by row index.
func (s *Session) ResolveConflict(fieldName, choiceKey string) error {
	if s.state != StateEditing {
		return fmt.Errorf("cannot resolve conflicts in state %s", s.state)
	}

	choices, ok := s.result.Sources[fieldName]
	if !ok {
		return fmt.Errorf("no conflict sources for field %q", fieldName)
	}
	values, ok := choices[choiceKey]
	if !ok || len(values) == 0 {
		return fmt.Errorf("field %q has no values from source %q", fieldName, choiceKey)
	}

	rows := s.Rows()
	for i := range rows {
		rows[i][fieldName] = values[i%len(values)]
	}
	s.result.Rows = rows
	return nil
}

// CodeBody renders the current rows as an editable code body.
func (s *Session) CodeBody() string {
	return CodeBody(s.result.Rows, s.order)
}

// ApplyCode executes an edited code body in the sandbox and replaces the
// rows with its result. On any failure (sandbox exception, non-mapping
// result, unequal array lengths) an ExecutionError is returned and the
// previous rows are retained unchanged. Values that no longer satisfy a
// field's constraint produce warnings, not errors.
func (s *Session) ApplyCode(ctx context.Context, code string) error {
	if s.state != StateEditing {
		return fmt.Errorf("cannot apply code in state %s", s.state)
	}

	result, err := s.runner.RunCode(ctx, code)
	if err != nil {
		return &ExecutionError{Reason: "sandbox error", Err: err}
	}
	if err := ctx.Err(); err != nil {
		// Cancelled while executing; the sandbox run cannot be
		// interrupted, so its result is simply dropped.
		return err
	}

	rows, err := rowsFromCodeResult(result)
	if err != nil {
		return err
	}

	s.result.Rows = rows
	s.result.Warnings = append(s.result.Warnings, s.constraintWarnings(rows)...)
	return nil
}

// constraintWarnings checks edited rows against each field's rule.
func (s *Session) constraintWarnings(rows []Row) []string {
	var warnings []string
	for _, f := range s.fields {
		for i, row := range rows {
			v, ok := row[f.Name]
			if !ok {
				continue
			}
			if !f.Rule.Matches(f.Value, v) {
				warnings = append(warnings,
					fmt.Sprintf("row %d: value %v for field %q does not satisfy its %s rule", i+1, v, f.Name, f.Rule.Kind()))
				break
			}
		}
	}
	return warnings
}

// Generate hands the current rows to the encoder. Encoder failure returns
// to Editing with rows preserved; success is terminal until re-analysis.
// Zero rows is refused outright.
func (s *Session) Generate(ctx context.Context, encode func(rows []Row) error) error {
	if s.state != StateEditing {
		return fmt.Errorf("cannot generate in state %s", s.state)
	}
	if len(s.result.Rows) == 0 {
		return fmt.Errorf("cannot generate with zero rows")
	}

	s.state = StateGenerating
	err := encode(s.Rows())

	if cerr := ctx.Err(); cerr != nil {
		s.state = StateEditing
		return cerr
	}
	if err != nil {
		s.state = StateEditing
		return fmt.Errorf("encode test files: %w", err)
	}

	s.state = StateDone
	return nil
}
