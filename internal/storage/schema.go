package storage

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/tasks-go/internal/utils"
)

const taskSchemaURL = "https://github.com/nibzard/tasks-go/task.schema.json"

//go:embed task.schema.json
var taskSchemaJSON string

var taskSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(taskSchemaURL, strings.NewReader(taskSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add task schema: %w", err)
	}
	schema, err := compiler.Compile(taskSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile task schema: %w", err)
	}
	return schema, nil
})

// schemaProblems validates a decoded task value against the task schema and
// returns one message per leaf failure, e.g. "priority: value must be one of ...".
func schemaProblems(v any) []string {
	schema, err := taskSchema()
	if err != nil {
		return []string{err.Error()}
	}
	err = schema.Validate(v)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	var problems []string
	collectSchemaErrors(&problems, ve)
	slices.Sort(problems)
	return slices.Compact(problems)
}

func collectSchemaErrors(problems *[]string, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		path := utils.JSONPointerToPath(err.InstanceLocation)
		if path == "" {
			*problems = append(*problems, err.Message)
			return
		}
		*problems = append(*problems, fmt.Sprintf("%s: %s", path, err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(problems, cause)
	}
}
