// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed result.schema.json
var resultSchemaJSON []byte

const resultSchemaURL = "result.schema.json"

var (
	resultSchemaOnce sync.Once
	resultSchema     *jsonschema.Schema
	resultSchemaErr  error
)

// Issue is a single schema violation in a model reply.
type Issue struct {
	Location string
	Message  string
}

func (i Issue) String() string {
	loc := i.Location
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + i.Message
}

func compiledResultSchema() (*jsonschema.Schema, error) {
	resultSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(resultSchemaURL, bytes.NewReader(resultSchemaJSON)); err != nil {
			resultSchemaErr = fmt.Errorf("adding result schema: %w", err)
			return
		}
		resultSchema, resultSchemaErr = compiler.Compile(resultSchemaURL)
	})
	return resultSchema, resultSchemaErr
}

// validateResult checks a decoded reply against the result schema and
// returns one Issue per leaf violation.
func validateResult(doc any) ([]Issue, error) {
	schema, err := compiledResultSchema()
	if err != nil {
		return nil, err
	}
	err = schema.Validate(doc)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return issues, nil
}
