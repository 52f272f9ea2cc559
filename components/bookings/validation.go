package bookings

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// clientSchema guards what gets pushed into the append-only clients
// collection: conversion is the single writer and a malformed record would
// sit there forever.
const clientSchema = `{
	"type": "object",
	"required": ["family_name", "parent_name", "status", "source", "created_at"],
	"properties": {
		"family_name": {"type": "string"},
		"parent_name": {"type": "string"},
		"email": {"type": "string"},
		"phone": {"type": "string"},
		"children": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string"},
					"age": {"type": ["string", "number"]},
					"allergies": {"type": "string"},
					"notes": {"type": "string"}
				}
			}
		},
		"notes": {"type": "string"},
		"status": {"type": "string", "enum": ["active", "inactive"]},
		"source": {"type": "string"},
		"created_at": {"type": "string"}
	}
}`

var (
	clientSchemaOnce     sync.Once
	clientSchemaCompiled *jsonschema.Schema
	clientSchemaErr      error
)

func compiledClientSchema() (*jsonschema.Schema, error) {
	clientSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("client.json", strings.NewReader(clientSchema)); err != nil {
			clientSchemaErr = fmt.Errorf("bookings: load client schema: %w", err)
			return
		}
		clientSchemaCompiled, clientSchemaErr = compiler.Compile("client.json")
	})
	return clientSchemaCompiled, clientSchemaErr
}

// ValidateClient checks a client record before it is pushed to the store.
func ValidateClient(client Client) error {
	schema, err := compiledClientSchema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(client)
	if err != nil {
		return fmt.Errorf("bookings: marshal client: %w", err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("bookings: normalize client: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("bookings: client record failed validation: %w", err)
	}
	return nil
}
