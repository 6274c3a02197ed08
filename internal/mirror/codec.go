package mirror

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/idilsaglam/mytodos/internal/model"
)

//go:embed todos.schema.json
var schemaJSON []byte

const schemaURL = "todos.schema.json"

// ErrMalformed wraps every reason a stored blob could not be decoded.
var ErrMalformed = errors.New("malformed todo collection")

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return c.Compile(schemaURL)
})

// Encode serializes the whole collection as one JSON array.
func Encode(todos []model.Todo) ([]byte, error) {
	if todos == nil {
		todos = []model.Todo{}
	}
	b, err := json.Marshal(todos)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// Decode parses a stored blob, keeping its order. Blank input decodes to
// an empty collection. Anything that is not an array of
// {id, title, completed} objects with unique ids fails with ErrMalformed.
func Decode(b []byte) ([]model.Todo, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return []model.Todo{}, nil
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, schemaMessage(err))
	}
	var todos []model.Todo
	if err := json.Unmarshal(b, &todos); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	seen := make(map[int]struct{}, len(todos))
	for i, t := range todos {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: [%d]: duplicate id %d", ErrMalformed, i, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return todos, nil
}

// schemaMessage flattens a validation error to its leaf causes.
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	var msgs []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return strings.Join(msgs, "; ")
}
