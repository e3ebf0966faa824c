package admin

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed job_schema.json
var jobSchemaJSON []byte

var (
	jobSchemaOnce sync.Once
	jobSchema     *jsonschema.Schema
	jobSchemaErr  error
)

func compiledJobSchema() (*jsonschema.Schema, error) {
	jobSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource("job.json", bytes.NewReader(jobSchemaJSON)); err != nil {
			jobSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		jobSchema, jobSchemaErr = compiler.Compile("job.json")
	})
	return jobSchema, jobSchemaErr
}

// ValidateJobPayload checks a raw admin job document before it is decoded.
func ValidateJobPayload(data []byte) error {
	schema, err := compiledJobSchema()
	if err != nil {
		return fmt.Errorf("compile job schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := schema.Validate(v); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &ValidationError{Problems: leafProblems(verr)}
		}
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// ValidationError lists each schema violation as "<pointer>: <message>".
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return ErrInvalidPayload.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidPayload
}

func leafProblems(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := verr.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{loc + ": " + verr.Message}
	}
	var out []string
	for _, c := range verr.Causes {
		out = append(out, leafProblems(c)...)
	}
	return out
}
